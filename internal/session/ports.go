package session

import (
	"context"

	"github.com/fastygo/dialin/domain"
)

// Authenticator is the auth half of the backend.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Identity, error)
	Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error)
	Me(ctx context.Context, userID int64) (domain.Identity, error)
}

// Lister fetches one domain's records for a user.
type Lister[T any] interface {
	List(ctx context.Context, userID int64) ([]T, error)
}

// Sources are the four domains fetched during a bulk load.
type Sources struct {
	Categories Lister[domain.Category]
	Tasks      Lister[domain.Task]
	Events     Lister[domain.Event]
	Rules      Lister[domain.Rule]
}

// IdentityStore persists the authenticated identity between runs.
// Load returns nil without error when nothing is stored.
type IdentityStore interface {
	Load(ctx context.Context) (*domain.Identity, error)
	Save(ctx context.Context, identity domain.Identity) error
	Clear(ctx context.Context) error
}

// PreferencesRemote is the user_data endpoint.
type PreferencesRemote interface {
	GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error)
	UpdatePreferences(ctx context.Context, userID int64, patch domain.PreferencesPatch) (domain.Preferences, error)
}
