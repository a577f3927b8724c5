package repository

import (
	"context"

	"github.com/fastygo/dialin/domain"
)

// RecordRepository stores the records of one entity domain, scoped by owner.
type RecordRepository[T any] interface {
	List(ctx context.Context, userID int64) ([]T, error)
	Get(ctx context.Context, userID, id int64) (T, error)
	// Create assigns the record ID.
	Create(ctx context.Context, item T) (T, error)
	Save(ctx context.Context, item T) error
	Delete(ctx context.Context, userID, id int64) error
}

type PreferencesRepository interface {
	Get(ctx context.Context, userID int64) (*domain.Preferences, error)
	Save(ctx context.Context, prefs domain.Preferences) error
}
