package services

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// SessionRefresher reloads every domain for the signed-in user.
type SessionRefresher interface {
	Refresh(ctx context.Context) error
}

// WriteTracker reports whether optimistic mutations are still in flight.
type WriteTracker interface {
	HasPendingWrites() bool
}

// RefresherConfig controls how often the user's data is reloaded.
type RefresherConfig struct {
	Schedule string
	Timeout  time.Duration
}

// Refresher periodically re-hydrates the entity stores from the backend.
type Refresher struct {
	session SessionRefresher
	monitor ConnectionHealth
	writers []WriteTracker
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     RefresherConfig
}

func NewRefresher(
	session SessionRefresher,
	monitor ConnectionHealth,
	writers []WriteTracker,
	logger *zap.Logger,
	cfg RefresherConfig,
) (*Refresher, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Refresher{
		session: session,
		monitor: monitor,
		writers: writers,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(),
	}

	if _, err := r.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if _, err := r.Tick(ctx); err != nil {
			r.logger.Warn("scheduled refresh failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}

	return r, nil
}

// Start launches the cron scheduler.
func (r *Refresher) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("refresher started", zap.String("schedule", r.cfg.Schedule))
}

// Stop gracefully stops the scheduler.
func (r *Refresher) Stop(ctx context.Context) error {
	if r == nil || r.cron == nil {
		return nil
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.logger.Info("refresher stopped")
	return nil
}

// Tick runs one refresh. It reports false when the refresh was skipped because
// the backend is offline or a local mutation has not settled yet; replacing
// the collections then would discard its optimistic state. A write started
// during the fetch is caught by the collections themselves, which refuse the
// snapshot while it is in flight.
func (r *Refresher) Tick(ctx context.Context) (bool, error) {
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping refresh (offline)")
		return false, nil
	}
	for _, w := range r.writers {
		if w.HasPendingWrites() {
			r.logger.Debug("skipping refresh (pending writes)")
			return false, nil
		}
	}
	if err := r.session.Refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
