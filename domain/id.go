package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ID identifies a record either by its server-assigned number or, while a create
// request is still in flight, by a client-generated pending token.
type ID struct {
	server int64
	token  string
}

// Confirmed returns an ID carrying a server-assigned identifier.
func Confirmed(id int64) ID {
	return ID{server: id}
}

// Pending returns an ID for a record the server has not acknowledged yet.
func Pending(token string) ID {
	return ID{token: token}
}

// NewPending returns a Pending ID with a fresh random token.
func NewPending() ID {
	return Pending(uuid.NewString())
}

func (id ID) IsPending() bool {
	return id.token != ""
}

func (id ID) IsConfirmed() bool {
	return id.token == "" && id.server != 0
}

// Server returns the server identifier when the ID is confirmed.
func (id ID) Server() (int64, bool) {
	if !id.IsConfirmed() {
		return 0, false
	}
	return id.server, true
}

// Token returns the pending token, empty for confirmed ids.
func (id ID) Token() string {
	return id.token
}

// IsZero reports whether the ID should be left out of request bodies.
// Pending tokens never leave the client.
func (id ID) IsZero() bool {
	return !id.IsConfirmed()
}

func (id ID) String() string {
	switch {
	case id.IsPending():
		return "pending:" + id.token
	case id.server != 0:
		return strconv.FormatInt(id.server, 10)
	default:
		return "none"
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	if !id.IsConfirmed() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.server, 10)), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = Confirmed(n)
	return nil
}
