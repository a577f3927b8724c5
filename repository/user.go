package repository

import (
	"context"
	"time"

	"github.com/fastygo/dialin/domain"
)

// Account is a registered user as the backend stores it.
type Account struct {
	domain.Identity
	PasswordHash []byte
	CreatedAt    time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	// Create assigns the account ID. A taken username yields ErrCodeConflict.
	Create(ctx context.Context, account *Account) error
}
