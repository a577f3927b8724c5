package keystore

import (
	"context"
	"errors"
	"time"

	"github.com/fastygo/dialin/domain"
)

// IdentityKey is where the signed-in identity lives.
const IdentityKey = "dialin.identity"

type identityEntry struct {
	domain.Identity
	SavedAt time.Time `json:"saved_at"`
}

// IdentityStore persists the authenticated identity in a Store.
type IdentityStore struct {
	store *Store
}

func NewIdentityStore(store *Store) *IdentityStore {
	return &IdentityStore{store: store}
}

func (s *IdentityStore) Load(_ context.Context) (*domain.Identity, error) {
	var entry identityEntry
	if err := s.store.Get(IdentityKey, &entry); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	identity := entry.Identity
	return &identity, nil
}

func (s *IdentityStore) Save(_ context.Context, identity domain.Identity) error {
	if !identity.Valid() {
		return domain.ErrInvalidPayload
	}
	return s.store.Put(IdentityKey, identityEntry{Identity: identity, SavedAt: time.Now().UTC()})
}

func (s *IdentityStore) Clear(_ context.Context) error {
	return s.store.Delete(IdentityKey)
}
