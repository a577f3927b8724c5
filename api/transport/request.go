package transport

// CredentialsRequest is the body of /auth/login and /auth/register.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionCheckRequest is the body of /auth/me.
type SessionCheckRequest struct {
	UserID int64 `json:"user_id"`
}
