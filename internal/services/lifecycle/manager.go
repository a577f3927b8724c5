package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownFunc releases one component.
type ShutdownFunc func(ctx context.Context) error

// Writer is a store with optimistic mutations that must reach the server
// before the client goes away.
type Writer interface {
	Wait(ctx context.Context) error
	HasPendingWrites() bool
}

type trackedWriter struct {
	name string
	w    Writer
}

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager shuts the client down in two phases. Tracked writers are drained
// first, concurrently, then release hooks run in reverse registration order.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	writers []trackedWriter
	hooks   []hook
	done    bool
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Track adds a writer to drain before any hook runs.
func (m *Manager) Track(name string, w Writer) {
	if w == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writers = append(m.writers, trackedWriter{name: name, w: w})
}

// Register adds a release hook.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Shutdown drains the writers and runs the hooks, all within the manager's
// timeout. It runs once; later calls return nil.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}
	m.done = true

	result := m.drain(ctx)
	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = multierr.Append(result, err)
			continue
		}
		m.logger.Debug("component stopped", zap.String("component", h.name))
	}
	m.writers, m.hooks = nil, nil
	return result
}

// drain waits for every writer. Writers still busy at the deadline are
// reported by name. Callers hold mu.
func (m *Manager) drain(ctx context.Context) error {
	errs := make([]error, len(m.writers))
	var g errgroup.Group
	for i, tw := range m.writers {
		g.Go(func() error {
			if err := tw.w.Wait(ctx); err != nil {
				m.logger.Warn("pending writes abandoned",
					zap.String("store", tw.name),
					zap.Bool("pending", tw.w.HasPendingWrites()),
					zap.Error(err))
				errs[i] = fmt.Errorf("drain %s: %w", tw.name, err)
				return errs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return multierr.Combine(errs...)
	}
	if len(m.writers) > 0 {
		m.logger.Debug("writes drained", zap.Int("stores", len(m.writers)))
	}
	return nil
}

// WithSignals returns a context cancelled on SIGINT or SIGTERM.
func (m *Manager) WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
