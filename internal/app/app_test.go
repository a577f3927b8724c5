package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/config"
	"github.com/fastygo/dialin/internal/devserver"
	"github.com/fastygo/dialin/internal/ui"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppName: "dialin-test",
		API:     config.APIConfig{BaseURL: "http://dialin.test", Timeout: 2 * time.Second},
		Identity: config.IdentityConfig{
			Backend:      config.IdentityBackendBolt,
			KeystorePath: filepath.Join(t.TempDir(), "keystore.db"),
		},
		Refresh: config.RefreshConfig{Schedule: "@every 1h"},
		Monitor: config.MonitorConfig{Interval: time.Hour},
		Context: config.ContextConfig{RequestTimeout: 2 * time.Second, ShutdownTimeout: 2 * time.Second},
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := devserver.New(devserver.Options{BcryptCost: bcrypt.MinCost}, nil)
	client, stop := srv.ServeInMemory()
	defer stop()
	cfg := testConfig(t)
	ctx := context.Background()

	first, err := New(ctx, cfg, nil, Options{HTTP: client})
	require.NoError(t, err)
	require.NotNil(t, first.Keystore())
	assert.Equal(t, ui.PageDashboard, first.Navigation.Current())

	require.True(t, first.Session.Register(ctx, domain.Credentials{Username: "ana", Password: "secret"}))
	_, err = first.Tasks.Add(ctx, domain.Task{Title: "carry over"}).Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))
	assert.NoError(t, first.Close(ctx))

	second, err := New(ctx, cfg, nil, Options{HTTP: client})
	require.NoError(t, err)
	defer second.Close(ctx)

	second.Session.CheckAuthStatus(ctx)

	identity, ok := second.Session.Identity()
	require.True(t, ok)
	assert.Equal(t, "ana", identity.Username)
	require.Equal(t, 1, second.Tasks.Len())
	assert.Equal(t, "carry over", second.Tasks.Items()[0].Title)
	assert.False(t, second.HasPendingWrites())
	assert.Len(t, second.Writers(), 5)
}

func TestCloseDrainsPendingWrites(t *testing.T) {
	srv := devserver.New(devserver.Options{BcryptCost: bcrypt.MinCost}, nil)
	client, stop := srv.ServeInMemory()
	defer stop()
	ctx := context.Background()

	a, err := New(ctx, testConfig(t), nil, Options{HTTP: client})
	require.NoError(t, err)
	require.True(t, a.Session.Register(ctx, domain.Credentials{Username: "ana", Password: "secret"}))

	op := a.Categories.Add(ctx, domain.Category{Name: "Work"})
	require.NoError(t, a.Close(ctx))

	select {
	case <-op.Done():
	default:
		t.Fatal("Close returned before the mutation settled")
	}
	assert.NoError(t, op.Err())
}

func TestRefresherIsRegistered(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), nil, Options{})
	require.NoError(t, err)

	r, err := a.NewRefresher()
	require.NoError(t, err)
	r.Start()

	assert.NoError(t, a.Close(ctx))
}
