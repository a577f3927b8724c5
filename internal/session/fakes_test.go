package session

import (
	"context"
	"sync"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

type fakeAuth struct {
	identity domain.Identity
	err      error
	meErr    error
	meCalls  int
}

func (f *fakeAuth) Login(_ context.Context, creds domain.Credentials) (domain.Identity, error) {
	if f.err != nil {
		return domain.Identity{}, f.err
	}
	id := f.identity
	id.Username = creds.Username
	return id, nil
}

func (f *fakeAuth) Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	return f.Login(ctx, creds)
}

func (f *fakeAuth) Me(_ context.Context, userID int64) (domain.Identity, error) {
	f.meCalls++
	if f.meErr != nil {
		return domain.Identity{}, f.meErr
	}
	return domain.Identity{ID: userID, Username: f.identity.Username}, nil
}

type fakeLister[T any] struct {
	items []T
	err   error
}

func (f fakeLister[T]) List(context.Context, int64) ([]T, error) {
	return f.items, f.err
}

// stalledLister never answers on its own; it returns once ctx is done.
type stalledLister[T any] struct{}

func (stalledLister[T]) List(ctx context.Context, _ int64) ([]T, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type memoryIdentities struct {
	mu       sync.Mutex
	identity *domain.Identity
	cleared  int
}

func (m *memoryIdentities) Load(context.Context) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil, nil
	}
	id := *m.identity
	return &id, nil
}

func (m *memoryIdentities) Save(_ context.Context, identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = &identity
	return nil
}

func (m *memoryIdentities) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = nil
	m.cleared++
	return nil
}

func (m *memoryIdentities) stored() *domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// recorder captures session events in publication order.
type recorder struct {
	mu     sync.Mutex
	names  []string
	loaded []bus.UserDataLoadedEvent
	auth   []bus.AuthStatusChangedEvent
	steps  []bus.DataLoadingEvent
}

func record(b *bus.Bus) *recorder {
	r := &recorder{}
	bus.Subscribe(b, bus.AuthStatusChanged, func(ev bus.AuthStatusChangedEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.names = append(r.names, bus.AuthStatusChanged.Name())
		r.auth = append(r.auth, ev)
		return nil
	})
	bus.Subscribe(b, bus.UserDataLoaded, func(ev bus.UserDataLoadedEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.names = append(r.names, bus.UserDataLoaded.Name())
		r.loaded = append(r.loaded, ev)
		return nil
	})
	bus.Subscribe(b, bus.DataLoading, func(ev bus.DataLoadingEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.steps = append(r.steps, ev)
		return nil
	})
	return r
}

func sampleSources() Sources {
	return Sources{
		Categories: fakeLister[domain.Category]{items: []domain.Category{{Record: domain.Record{ID: domain.Confirmed(1), UserID: 7}, Name: "Work"}}},
		Tasks:      fakeLister[domain.Task]{items: []domain.Task{{Record: domain.Record{ID: domain.Confirmed(2), UserID: 7}, Title: "Ship"}}},
		Events:     fakeLister[domain.Event]{items: []domain.Event{}},
		Rules:      fakeLister[domain.Rule]{items: []domain.Rule{{Record: domain.Record{ID: domain.Confirmed(3), UserID: 7}, Name: "Daily"}}},
	}
}
