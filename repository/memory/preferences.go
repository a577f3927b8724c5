package memory

import (
	"context"
	"sync"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/repository"
)

var errPreferencesNotFound = domain.NewError(domain.ErrCodeNotFound, "User data not found")

type preferencesRepository struct {
	mu    sync.RWMutex
	items map[int64]domain.Preferences
}

func NewPreferencesRepository() repository.PreferencesRepository {
	return &preferencesRepository{items: make(map[int64]domain.Preferences)}
}

func (r *preferencesRepository) Get(_ context.Context, userID int64) (*domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefs, ok := r.items[userID]
	if !ok {
		return nil, errPreferencesNotFound
	}
	return &prefs, nil
}

func (r *preferencesRepository) Save(_ context.Context, prefs domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[prefs.UserID] = prefs
	return nil
}
