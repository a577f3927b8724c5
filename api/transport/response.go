package transport

import (
	"encoding/json"

	"github.com/fastygo/dialin/domain"
)

// ErrorResponse is the backend's failure body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// NewError returns an error body.
func NewError(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}

// UserResponse is returned by every auth endpoint.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message,omitempty"`
}

func (u UserResponse) Identity() domain.Identity {
	return domain.Identity{ID: u.ID, Username: u.Username}
}

// MessageResponse acknowledges operations without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp domain.Timestamp `json:"timestamp"`
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e ErrorResponse) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ValidationIssue is one entry of a request-validation failure.
type ValidationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrorResponse is sent with 422 when a request is malformed. Its
// detail is a list, unlike ErrorResponse.
type ValidationErrorResponse struct {
	Detail []ValidationIssue `json:"detail"`
}

func MissingField(location, field string) ValidationErrorResponse {
	return ValidationErrorResponse{Detail: []ValidationIssue{{
		Loc:  []string{location, field},
		Msg:  "field required",
		Type: "value_error.missing",
	}}}
}
