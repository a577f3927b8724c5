package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

// LoadAllDomains fetches the four domains concurrently and publishes them as a
// single UserDataLoaded event. A domain answering 404 has no data yet and counts
// as empty. Any other failure fails the whole load and nothing is published.
func (s *Store) LoadAllDomains(ctx context.Context, userID int64) error {
	s.mu.Lock()
	s.load = LoadState{Initial: true, LastLoad: s.now()}
	s.mu.Unlock()

	for _, dom := range domain.Domains {
		s.progress(userID, dom, bus.LoadStatusLoading, nil)
	}

	var snapshot domain.Snapshot
	errs := make([]error, len(domain.Domains))
	g, gctx := errgroup.WithContext(ctx)
	load := func(i int, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", domain.Domains[i], err)
				return errs[i]
			}
			return nil
		})
	}
	load(0, func(ctx context.Context) error { return fetch(ctx, s.sources.Categories, userID, &snapshot.Categories) })
	load(1, func(ctx context.Context) error { return fetch(ctx, s.sources.Tasks, userID, &snapshot.Tasks) })
	load(2, func(ctx context.Context) error { return fetch(ctx, s.sources.Events, userID, &snapshot.Events) })
	load(3, func(ctx context.Context) error { return fetch(ctx, s.sources.Rules, userID, &snapshot.Rules) })

	// The first failure cancels the remaining fetches; their cancellations are
	// not reported alongside it.
	failures := g.Wait()
	for _, err := range errs {
		if err == nil || err == failures || (errors.Is(err, context.Canceled) && ctx.Err() == nil) {
			continue
		}
		failures = multierr.Append(failures, err)
	}

	if failures != nil {
		err := domain.WrapError(domain.ErrCodeInternal, domain.ErrLoadFailed.Message, failures)
		s.logger.Error("bulk load failed", zap.Int64("user_id", userID), zap.Error(failures))
		for _, dom := range domain.Domains {
			s.progress(userID, dom, bus.LoadStatusError, failures)
		}
		s.mu.Lock()
		s.state.Error = domain.ErrLoadFailed.Message
		s.state.IsLoading = false
		s.load = LoadState{Failed: append([]domain.Domain(nil), domain.Domains...), LastLoad: s.now()}
		s.mu.Unlock()
		return err
	}

	bus.Publish(s.bus, bus.UserDataLoaded, bus.UserDataLoadedEvent{
		UserID:     userID,
		Categories: snapshot.Categories,
		Tasks:      snapshot.Tasks,
		Events:     snapshot.Events,
		Rules:      snapshot.Rules,
	})
	for _, dom := range domain.Domains {
		s.progress(userID, dom, bus.LoadStatusSuccess, nil)
	}

	s.mu.Lock()
	s.state.IsLoading = false
	s.load = LoadState{Loaded: append([]domain.Domain(nil), domain.Domains...), LastLoad: s.now()}
	s.mu.Unlock()

	s.logger.Info("user data loaded",
		zap.Int64("user_id", userID),
		zap.Int("categories", len(snapshot.Categories)),
		zap.Int("tasks", len(snapshot.Tasks)),
		zap.Int("events", len(snapshot.Events)),
		zap.Int("rules", len(snapshot.Rules)))
	return nil
}

func fetch[T any](ctx context.Context, source Lister[T], userID int64, dst *[]T) error {
	if source == nil {
		*dst = []T{}
		return nil
	}
	items, err := source.List(ctx, userID)
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		*dst = []T{}
		return nil
	}
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*dst = items
	return nil
}

func (s *Store) progress(userID int64, dom domain.Domain, status bus.LoadStatus, err error) {
	ev := bus.DataLoadingEvent{UserID: userID, Domain: dom, Status: status}
	if err != nil {
		ev.Error = err.Error()
	}
	bus.Publish(s.bus, bus.DataLoading, ev)
}
