package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fastygo/dialin/domain"
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("status %d", e.Status)
}

// The backend reports failures as {"detail": ...}; detail is a string for
// explicit rejections and a list for validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func newStatusError(status int, body []byte) error {
	statusErr := &StatusError{Status: status, Detail: parseDetail(body)}
	message := statusErr.Detail
	if message == "" {
		message = http.StatusText(status)
	}
	return domain.WrapError(codeFor(status), message, statusErr)
}

func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		return detail
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}

func codeFor(status int) domain.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return domain.ErrCodeNotFound
	case status == http.StatusUnauthorized:
		return domain.ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return domain.ErrCodeForbidden
	case status == http.StatusConflict:
		return domain.ErrCodeConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.ErrCodeInvalid
	case status >= 500:
		return domain.ErrCodeUnavailable
	default:
		return domain.ErrCodeInternal
	}
}

// Detail returns the server-provided failure reason carried by err, if any.
func Detail(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Detail
	}
	return ""
}

// Status returns the HTTP status carried by err, or 0 when the backend never answered.
func Status(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return domain.IsDomainError(err, domain.ErrCodeNotFound)
}
