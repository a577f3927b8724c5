package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

// Remote is the server side of one entity domain.
type Remote[T any, P any] interface {
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, userID, id int64, patch P) (T, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Options tune a Collection.
type Options struct {
	Clock func() time.Time
}

// Collection holds one user's records of a single type and applies every
// mutation optimistically, reconciling with the server afterwards or reverting.
type Collection[T any, P domain.Patch[T], PT domain.Entity[T]] struct {
	domain domain.Domain
	remote Remote[T, P]
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	items    []T
	owner    int64
	gen      uint64
	inflight int

	wg sync.WaitGroup
}

func NewCollection[T any, P domain.Patch[T], PT domain.Entity[T]](dom domain.Domain, remote Remote[T, P], logger *zap.Logger, opts Options) *Collection[T, P, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Collection[T, P, PT]{
		domain: dom,
		remote: remote,
		logger: logger.With(zap.String("domain", string(dom))),
		now:    opts.Clock,
	}
}

// Attach subscribes the collection to session events: hydration from
// UserDataLoaded, owner tracking and clearing from AuthStatusChanged.
func (c *Collection[T, P, PT]) Attach(b *bus.Bus, pick func(bus.UserDataLoadedEvent) []T) (detach func()) {
	offLoaded := bus.Subscribe(b, bus.UserDataLoaded, func(ev bus.UserDataLoadedEvent) error {
		if !c.hydrate(ev.UserID, pick(ev)) {
			c.logger.Warn("reload skipped, writes in flight", zap.Int64("user_id", ev.UserID))
		}
		return nil
	})
	offAuth := bus.Subscribe(b, bus.AuthStatusChanged, func(ev bus.AuthStatusChangedEvent) error {
		if !ev.IsAuthenticated || !ev.Identity.Valid() {
			c.Clear()
			return nil
		}
		c.mu.Lock()
		if c.owner != 0 && c.owner != ev.Identity.ID {
			c.reset()
		}
		c.owner = ev.Identity.ID
		c.mu.Unlock()
		return nil
	})
	return func() {
		offLoaded()
		offAuth()
	}
}

func (c *Collection[T, P, PT]) Domain() domain.Domain {
	return c.domain
}

// SetOwner sets the user new records are created for. Zero disables mutations.
func (c *Collection[T, P, PT]) SetOwner(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = userID
}

// SetAll replaces the collection wholesale.
func (c *Collection[T, P, PT]) SetAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(items)
}

// Clear empties the collection, forgets the owner and abandons in-flight
// mutations: their completions no longer touch local state.
func (c *Collection[T, P, PT]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.owner = 0
}

// hydrate replaces the collection with a server snapshot for userID. A
// snapshot for the current owner is refused while mutations are in flight,
// since it may predate them.
func (c *Collection[T, P, PT]) hydrate(userID int64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.owner == userID && c.inflight > 0:
		return false
	case c.owner != 0 && c.owner != userID:
		c.reset()
	}
	c.owner = userID
	c.items = slices.Clone(items)
	return true
}

// reset drops the records and abandons in-flight mutations. Callers hold mu.
func (c *Collection[T, P, PT]) reset() {
	c.items = nil
	c.inflight = 0
	c.gen++
}

// Items returns a copy of the current records.
func (c *Collection[T, P, PT]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection[T, P, PT]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[T, P, PT]) Get(id domain.ID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

// HasPendingWrites reports whether a mutation of the current session is in flight.
func (c *Collection[T, P, PT]) HasPendingWrites() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Add appends a provisional record built from draft and creates it remotely.
// On success the provisional record is replaced by the server's; on failure it
// is removed.
func (c *Collection[T, P, PT]) Add(ctx context.Context, draft T) *Op[T] {
	c.mu.Lock()
	if c.owner == 0 {
		c.mu.Unlock()
		c.logger.Error("add called without an active session")
		return FailedOp[T](domain.ErrNoSession)
	}

	body := draft
	meta := PT(&body).Meta()
	meta.ID = domain.ID{}
	meta.UserID = c.owner
	meta.CreatedAt = domain.Timestamp{}

	provisional := body
	pmeta := PT(&provisional).Meta()
	pmeta.ID = domain.NewPending()
	pmeta.CreatedAt = domain.At(c.now())
	pending := pmeta.ID

	c.items = append(c.items, provisional)
	gen := c.begin()
	c.mu.Unlock()

	op := NewOp[T]()
	go func() {
		defer c.wg.Done()
		created, err := c.remote.Create(context.WithoutCancel(ctx), body)
		if err == nil && !PT(&created).Meta().ID.IsConfirmed() {
			err = domain.NewError(domain.ErrCodeInternal, "server returned a record without id")
		}

		c.mu.Lock()
		live := c.finish(gen)
		if live {
			idx := c.indexOf(pending)
			switch {
			case err != nil && idx >= 0:
				c.items = slices.Delete(c.items, idx, idx+1)
			case err == nil && idx >= 0:
				c.items[idx] = created
			}
		}
		c.mu.Unlock()

		if err != nil {
			c.logger.Error("create failed, provisional record removed", zap.Stringer("id", pending), zap.Error(err))
			var zero T
			op.Resolve(zero, err)
			return
		}
		c.logger.Debug("record created", zap.Stringer("id", PT(&created).Meta().ID), zap.Bool("live", live))
		op.Resolve(created, nil)
	}()
	return op
}

// Update merges patch into the record locally and sends it to the server.
// On failure the exact pre-update record is restored.
func (c *Collection[T, P, PT]) Update(ctx context.Context, id domain.ID, patch P) *Op[T] {
	c.mu.Lock()
	serverID, idx, err := c.target(id)
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("update rejected", zap.Stringer("id", id), zap.Error(err))
		return FailedOp[T](err)
	}
	owner := c.owner
	original := c.items[idx]
	c.items[idx] = patch.Apply(original)
	gen := c.begin()
	c.mu.Unlock()

	op := NewOp[T]()
	go func() {
		defer c.wg.Done()
		updated, err := c.remote.Update(context.WithoutCancel(ctx), owner, serverID, patch)

		c.mu.Lock()
		if c.finish(gen) {
			if idx := c.indexOf(id); idx >= 0 {
				if err != nil {
					c.items[idx] = original
				} else {
					c.items[idx] = updated
				}
			}
		}
		c.mu.Unlock()

		if err != nil {
			c.logger.Error("update failed, record reverted", zap.Stringer("id", id), zap.Error(err))
			var zero T
			op.Resolve(zero, err)
			return
		}
		op.Resolve(updated, nil)
	}()
	return op
}

// Delete removes the record locally and on the server. On failure the record
// goes back to its former position.
func (c *Collection[T, P, PT]) Delete(ctx context.Context, id domain.ID) *Op[T] {
	c.mu.Lock()
	serverID, idx, err := c.target(id)
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("delete rejected", zap.Stringer("id", id), zap.Error(err))
		return FailedOp[T](err)
	}
	owner := c.owner
	removed := c.items[idx]
	c.items = slices.Delete(c.items, idx, idx+1)
	gen := c.begin()
	c.mu.Unlock()

	op := NewOp[T]()
	go func() {
		defer c.wg.Done()
		err := c.remote.Delete(context.WithoutCancel(ctx), owner, serverID)

		c.mu.Lock()
		if c.finish(gen) && err != nil && c.indexOf(id) < 0 {
			c.items = slices.Insert(c.items, min(idx, len(c.items)), removed)
		}
		c.mu.Unlock()

		if err != nil {
			c.logger.Error("delete failed, record restored", zap.Stringer("id", id), zap.Error(err))
			var zero T
			op.Resolve(zero, err)
			return
		}
		op.Resolve(removed, nil)
	}()
	return op
}

// Wait blocks until every mutation started so far has settled or ctx ends.
func (c *Collection[T, P, PT]) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// target resolves id to a confirmed server id and its index. Callers hold mu.
func (c *Collection[T, P, PT]) target(id domain.ID) (int64, int, error) {
	if c.owner == 0 {
		return 0, -1, domain.ErrNoSession
	}
	if id.IsPending() {
		return 0, -1, domain.ErrRecordPending
	}
	serverID, ok := id.Server()
	if !ok {
		return 0, -1, domain.ErrRecordNotFound
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return 0, -1, domain.ErrRecordNotFound
	}
	return serverID, idx, nil
}

// begin registers an in-flight mutation and returns its generation. Callers hold mu.
func (c *Collection[T, P, PT]) begin() uint64 {
	c.inflight++
	c.wg.Add(1)
	return c.gen
}

// finish retires an in-flight mutation and reports whether its generation is
// still current. Callers hold mu.
func (c *Collection[T, P, PT]) finish(gen uint64) bool {
	if gen != c.gen {
		return false
	}
	if c.inflight > 0 {
		c.inflight--
	}
	return true
}

func (c *Collection[T, P, PT]) indexOf(id domain.ID) int {
	for i := range c.items {
		if PT(&c.items[i]).Meta().ID == id {
			return i
		}
	}
	return -1
}
