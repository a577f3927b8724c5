// Package app wires the client: one bus, the entity stores, the session and
// the backend client, built once per process and passed to front-ends.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/internal/api"
	"github.com/fastygo/dialin/internal/bus"
	"github.com/fastygo/dialin/internal/config"
	"github.com/fastygo/dialin/internal/infrastructure/keystore"
	"github.com/fastygo/dialin/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/dialin/internal/infrastructure/redis"
	"github.com/fastygo/dialin/internal/services"
	"github.com/fastygo/dialin/internal/services/lifecycle"
	"github.com/fastygo/dialin/internal/session"
	"github.com/fastygo/dialin/internal/store"
	"github.com/fastygo/dialin/internal/ui"
)

// Options override infrastructure, mainly for tests.
type Options struct {
	// HTTP replaces the default fasthttp client.
	HTTP api.Doer
	// Identities replaces the configured identity store.
	Identities session.IdentityStore
	Store      store.Options
}

type App struct {
	Config *config.Config
	Logger *zap.Logger

	Bus         *bus.Bus
	API         *api.Client
	Categories  *store.Categories
	Tasks       *store.Tasks
	Events      *store.Events
	Rules       *store.Rules
	Session     *session.Store
	Preferences *session.Preferences
	Navigation  *ui.Navigation
	Device      *ui.Device
	Monitor     *monitor.Monitor

	keystore  *keystore.Store
	lifecycle *lifecycle.Manager
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config:     cfg,
		Logger:     logger,
		Bus:        bus.New(logger),
		Navigation: ui.NewNavigation(),
		Device:     ui.NewDevice(),
		lifecycle:  lifecycle.New(cfg.Context.ShutdownTimeout, logger),
	}

	identities := opts.Identities
	if identities == nil {
		var err error
		if identities, err = a.openIdentityStore(ctx); err != nil {
			return nil, err
		}
	}

	a.API = api.New(cfg.API.BaseURL, logger, api.Options{Timeout: cfg.API.Timeout, HTTP: opts.HTTP})
	resources := a.API.Resources()

	var detachers []func()
	var detach func()
	a.Categories, detach = store.NewCategories(resources.Categories, a.Bus, logger, opts.Store)
	detachers = append(detachers, detach)
	a.Tasks, detach = store.NewTasks(resources.Tasks, a.Bus, logger, opts.Store)
	detachers = append(detachers, detach)
	a.Events, detach = store.NewEvents(resources.Events, a.Bus, logger, opts.Store)
	detachers = append(detachers, detach)
	a.Rules, detach = store.NewRules(resources.Rules, a.Bus, logger, opts.Store)
	detachers = append(detachers, detach)
	a.Preferences, detach = session.NewPreferences(a.API, a.Bus, logger)
	detachers = append(detachers, detach)

	a.Session = session.New(a.API, session.Sources{
		Categories: resources.Categories,
		Tasks:      resources.Tasks,
		Events:     resources.Events,
		Rules:      resources.Rules,
	}, identities, a.Bus, logger)

	a.Monitor = monitor.New(a.API, a.API.BaseURL(), cfg.Monitor.Interval, logger)

	a.lifecycle.Register("bus", func(context.Context) error {
		for _, d := range detachers {
			d()
		}
		return nil
	})
	a.lifecycle.Track("categories", a.Categories)
	a.lifecycle.Track("tasks", a.Tasks)
	a.lifecycle.Track("events", a.Events)
	a.lifecycle.Track("rules", a.Rules)
	a.lifecycle.Track("preferences", a.Preferences)

	return a, nil
}

func (a *App) openIdentityStore(ctx context.Context) (session.IdentityStore, error) {
	switch a.Config.Identity.Backend {
	case config.IdentityBackendRedis:
		client, err := redisInfra.NewClient(ctx, a.Config.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.lifecycle.Register("redis", func(context.Context) error {
			return client.Close()
		})
		return redisInfra.NewIdentityStore(client, a.Config.AppName, a.Config.Redis.TTL), nil
	default:
		ks, err := keystore.Open(a.Config.Identity.KeystorePath, a.Config.Identity.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open keystore: %w", err)
		}
		a.keystore = ks
		a.lifecycle.Register("keystore", func(context.Context) error {
			return ks.Close()
		})
		return keystore.NewIdentityStore(ks), nil
	}
}

// Writers lists every store that performs optimistic writes.
func (a *App) Writers() []services.WriteTracker {
	return []services.WriteTracker{a.Categories, a.Tasks, a.Events, a.Rules, a.Preferences}
}

// HasPendingWrites reports whether any store still has a mutation in flight.
func (a *App) HasPendingWrites() bool {
	for _, w := range a.Writers() {
		if w.HasPendingWrites() {
			return true
		}
	}
	return false
}

// Keystore returns the bbolt keystore, or nil when identities live elsewhere.
func (a *App) Keystore() *keystore.Store {
	return a.keystore
}

// NewRefresher builds the periodic reload job. It is registered for shutdown
// but not started.
func (a *App) NewRefresher() (*services.Refresher, error) {
	r, err := services.NewRefresher(a.Session, a.Monitor, a.Writers(), a.Logger, services.RefresherConfig{
		Schedule: a.Config.Refresh.Schedule,
		Timeout:  a.Config.Context.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", a.Config.Refresh.Schedule, err)
	}
	a.lifecycle.Register("refresher", r.Stop)
	return r, nil
}

// StartMonitor begins polling backend health until Close.
func (a *App) StartMonitor() {
	a.Monitor.Start()
	a.lifecycle.Register("monitor", func(context.Context) error {
		a.Monitor.Stop()
		return nil
	})
}

// Close waits for in-flight mutations and releases every resource.
func (a *App) Close(ctx context.Context) error {
	return a.lifecycle.Shutdown(ctx)
}

// WithSignals returns a context cancelled on SIGINT or SIGTERM.
func (a *App) WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return a.lifecycle.WithSignals(parent)
}
