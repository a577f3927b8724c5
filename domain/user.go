package domain

// Identity is the authenticated user as returned by the auth endpoints.
// It is persisted client-side for session restore.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (i *Identity) Valid() bool {
	return i != nil && i.ID > 0
}

// Credentials are posted to the login and register endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return NewError(ErrCodeInvalid, "username and password are required")
	}
	return nil
}
