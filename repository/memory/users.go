package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/repository"
)

var (
	errUserNotFound  = domain.NewError(domain.ErrCodeNotFound, "User not found")
	errUsernameTaken = domain.NewError(domain.ErrCodeConflict, "Username already registered")
)

type userRepository struct {
	mu         sync.RWMutex
	seq        int64
	byID       map[int64]repository.Account
	byUsername map[string]int64
}

// NewUserRepository creates an in-memory user repository.
func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:       make(map[int64]repository.Account),
		byUsername: make(map[string]int64),
	}
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*repository.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, errUserNotFound
	}
	return &account, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*repository.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[usernameKey(username)]
	if !ok {
		return nil, errUserNotFound
	}
	account := r.byID[id]
	return &account, nil
}

func (r *userRepository) Create(_ context.Context, account *repository.Account) error {
	if account == nil || account.Username == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := usernameKey(account.Username)
	if _, taken := r.byUsername[key]; taken {
		return errUsernameTaken
	}
	r.seq++
	account.ID = r.seq
	r.byID[account.ID] = *account
	r.byUsername[key] = account.ID
	return nil
}

func usernameKey(username string) string {
	return strings.TrimSpace(username)
}
