package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
	"github.com/fastygo/dialin/internal/store"
)

var errPreferencesNotLoaded = domain.NewError(domain.ErrCodePrecondition, "preferences not loaded")

// Preferences is the optimistic store for the per-user settings blob. It follows
// the entity-store protocol for a single value instead of a collection.
type Preferences struct {
	remote PreferencesRemote
	logger *zap.Logger

	mu        sync.Mutex
	owner     int64
	current   *domain.Preferences
	inflight  int
	gen       uint64
	lastError string

	wg sync.WaitGroup
}

func NewPreferences(remote PreferencesRemote, b *bus.Bus, logger *zap.Logger) (*Preferences, func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Preferences{remote: remote, logger: logger.With(zap.String("domain", "user_data"))}
	detach := bus.Subscribe(b, bus.AuthStatusChanged, func(ev bus.AuthStatusChangedEvent) error {
		if !ev.IsAuthenticated || !ev.Identity.Valid() {
			p.Clear()
			return nil
		}
		p.mu.Lock()
		if p.owner != ev.Identity.ID {
			p.current = nil
		}
		p.owner = ev.Identity.ID
		p.mu.Unlock()
		return nil
	})
	return p, detach
}

// Current returns the loaded preferences, if any.
func (p *Preferences) Current() (domain.Preferences, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return domain.Preferences{}, false
	}
	return *p.current, true
}

func (p *Preferences) HasPendingWrites() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight > 0
}

// LastError is the message of the most recent failed update.
func (p *Preferences) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

func (p *Preferences) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owner = 0
	p.current = nil
	p.inflight = 0
	p.lastError = ""
	p.gen++
}

// Load fetches the preferences of the signed-in user.
func (p *Preferences) Load(ctx context.Context) (domain.Preferences, error) {
	p.mu.Lock()
	owner, gen := p.owner, p.gen
	p.mu.Unlock()
	if owner == 0 {
		p.logger.Error("load called without an active session")
		return domain.Preferences{}, domain.ErrNoSession
	}

	prefs, err := p.remote.GetPreferences(ctx, owner)
	if err != nil {
		p.logger.Error("failed to load preferences", zap.Error(err))
		return domain.Preferences{}, err
	}

	p.mu.Lock()
	if gen == p.gen {
		p.current = &prefs
	}
	p.mu.Unlock()
	return prefs, nil
}

// Update applies patch locally and PUTs it. The server's answer replaces the
// local value; a failure restores the value from before the call.
func (p *Preferences) Update(ctx context.Context, patch domain.PreferencesPatch) *store.Op[domain.Preferences] {
	p.mu.Lock()
	switch {
	case p.owner == 0:
		p.mu.Unlock()
		p.logger.Error("update called without an active session")
		return store.FailedOp[domain.Preferences](domain.ErrNoSession)
	case p.current == nil:
		p.mu.Unlock()
		p.logger.Error("update called before preferences were loaded")
		return store.FailedOp[domain.Preferences](errPreferencesNotLoaded)
	}
	owner, gen := p.owner, p.gen
	original := *p.current
	optimistic := patch.Apply(original)
	p.current = &optimistic
	p.inflight++
	p.lastError = ""
	p.mu.Unlock()

	op := store.NewOp[domain.Preferences]()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		saved, err := p.remote.UpdatePreferences(context.WithoutCancel(ctx), owner, patch)

		p.mu.Lock()
		if gen == p.gen {
			if p.inflight > 0 {
				p.inflight--
			}
			if err != nil {
				p.current = &original
				p.lastError = domain.ErrPreferencesFailed.Message
			} else {
				p.current = &saved
			}
		}
		p.mu.Unlock()

		if err != nil {
			p.logger.Error("preferences update failed, reverted", zap.Error(err))
			op.Resolve(domain.Preferences{}, err)
			return
		}
		op.Resolve(saved, nil)
	}()
	return op
}

// Wait blocks until in-flight updates settle or ctx ends.
func (p *Preferences) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
