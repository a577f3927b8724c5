package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/api"
	"github.com/fastygo/dialin/internal/bus"
)

type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
)

// State is what a presentation layer renders for authentication.
type State struct {
	Status    Status
	IsLoading bool
	Error     string
}

func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// LoadState tracks the most recent bulk load.
type LoadState struct {
	Initial  bool
	Loaded   []domain.Domain
	Failed   []domain.Domain
	LastLoad time.Time
}

// Store owns the authentication lifecycle and populates the entity stores,
// through the bus, once a user is known.
type Store struct {
	auth       Authenticator
	sources    Sources
	identities IdentityStore
	bus        *bus.Bus
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	identity *domain.Identity
	state    State
	load     LoadState
}

func New(auth Authenticator, sources Sources, identities IdentityStore, b *bus.Bus, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		auth:       auth,
		sources:    sources,
		identities: identities,
		bus:        b,
		logger:     logger,
		now:        time.Now,
		state:      State{Status: StatusAnonymous},
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Identity() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

func (s *Store) Loading() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load
}

// Login authenticates and, on success, loads every domain. Failures are
// reported through the returned bool and State().Error.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) bool {
	return s.authenticate(ctx, "login", creds, s.auth.Login)
}

// Register creates the account and signs in as it.
func (s *Store) Register(ctx context.Context, creds domain.Credentials) bool {
	return s.authenticate(ctx, "register", creds, s.auth.Register)
}

type authFunc func(ctx context.Context, creds domain.Credentials) (domain.Identity, error)

func (s *Store) authenticate(ctx context.Context, action string, creds domain.Credentials, fn authFunc) bool {
	s.setState(State{Status: StatusAuthenticating, IsLoading: true})

	identity, err := s.tryAuthenticate(ctx, creds, fn)
	if err != nil {
		message := failureMessage(action, err)
		s.mu.Lock()
		s.identity = nil
		s.state = State{Status: StatusAnonymous, Error: message}
		s.mu.Unlock()
		s.logger.Warn("authentication failed", zap.String("action", action), zap.String("reason", message), zap.Error(err))
		return false
	}

	s.adopt(ctx, identity)
	s.logger.Info("authenticated", zap.String("action", action), zap.Int64("user_id", identity.ID))
	_ = s.LoadAllDomains(ctx, identity.ID)
	return true
}

func (s *Store) tryAuthenticate(ctx context.Context, creds domain.Credentials, fn authFunc) (domain.Identity, error) {
	if err := creds.Validate(); err != nil {
		return domain.Identity{}, err
	}
	return fn(ctx, creds)
}

// failureMessage turns an auth error into the text shown next to the form.
func failureMessage(action string, err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Code == domain.ErrCodeInvalid && dErr.Err == nil {
		return dErr.Message
	}
	rejected := api.Status(err) != 0
	if action == "register" {
		if detail := api.Detail(err); detail != "" {
			return detail
		}
		return domain.ErrRegistrationFailed.Message
	}
	if !rejected {
		return "Login failed"
	}
	return domain.ErrInvalidCredentials.Message
}

// Logout clears every entity store through the bus and forgets the identity.
func (s *Store) Logout(ctx context.Context) {
	bus.Publish(s.bus, bus.AuthStatusChanged, bus.AuthStatusChangedEvent{IsAuthenticated: false})

	if s.identities != nil {
		if err := s.identities.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear persisted identity", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.identity = nil
	s.state = State{Status: StatusAnonymous}
	s.load = LoadState{}
	s.mu.Unlock()
	s.logger.Info("logged out")
}

// CheckAuthStatus restores a persisted session. Having no valid persisted
// identity is the normal cold start and is not reported as an error.
func (s *Store) CheckAuthStatus(ctx context.Context) {
	s.setState(State{Status: StatusAuthenticating, IsLoading: true})

	stored, err := s.loadPersisted(ctx)
	if err != nil || !stored.Valid() {
		if err != nil {
			s.logger.Warn("failed to read persisted identity", zap.Error(err))
		}
		s.settleAnonymous()
		return
	}

	identity, err := s.auth.Me(ctx, stored.ID)
	if err != nil || !identity.Valid() {
		s.logger.Info("persisted session rejected", zap.Int64("user_id", stored.ID), zap.Error(err))
		if s.identities != nil {
			if clearErr := s.identities.Clear(ctx); clearErr != nil {
				s.logger.Warn("failed to clear persisted identity", zap.Error(clearErr))
			}
		}
		s.settleAnonymous()
		return
	}

	s.adopt(ctx, identity)
	s.logger.Info("session restored", zap.Int64("user_id", identity.ID))
	_ = s.LoadAllDomains(ctx, identity.ID)
}

// Refresh reloads every domain for the current identity.
func (s *Store) Refresh(ctx context.Context) error {
	identity, ok := s.Identity()
	if !ok {
		return domain.ErrNoSession
	}
	return s.LoadAllDomains(ctx, identity.ID)
}

func (s *Store) loadPersisted(ctx context.Context) (*domain.Identity, error) {
	if s.identities == nil {
		return nil, nil
	}
	return s.identities.Load(ctx)
}

func (s *Store) adopt(ctx context.Context, identity domain.Identity) {
	if s.identities != nil {
		if err := s.identities.Save(ctx, identity); err != nil {
			s.logger.Warn("failed to persist identity", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.identity = &identity
	s.state = State{Status: StatusAuthenticated, IsLoading: true}
	s.mu.Unlock()

	published := identity
	bus.Publish(s.bus, bus.AuthStatusChanged, bus.AuthStatusChangedEvent{IsAuthenticated: true, Identity: &published})
}

func (s *Store) settleAnonymous() {
	s.mu.Lock()
	s.identity = nil
	s.state = State{Status: StatusAnonymous}
	s.mu.Unlock()
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
