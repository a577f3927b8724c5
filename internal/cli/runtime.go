package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/app"
	"github.com/fastygo/dialin/internal/config"
	"github.com/fastygo/dialin/internal/store"
	"github.com/fastygo/dialin/internal/ui"
	"github.com/fastygo/dialin/pkg/logger"
)

// Bootstrap builds the client used by a single command.
type Bootstrap func(ctx context.Context, opts *RootOptions) (*app.App, error)

// DefaultBootstrap loads configuration from the environment.
func DefaultBootstrap(ctx context.Context, opts *RootOptions) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.Logger.Level
	if opts.Verbose {
		level = "debug"
	} else if level == "info" {
		// keep stderr quiet for interactive use unless asked
		level = "warn"
	}
	zapLogger, err := logger.New(logger.Config{
		Level:      level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
	})
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, zapLogger, app.Options{})
}

type runFunc func(ctx context.Context, a *app.App, out *Printer) error

// run builds the client, invokes fn and releases the client afterwards.
func run(cmd *cobra.Command, opts *RootOptions, fn runFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := opts.Bootstrap(ctx, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "startup failed", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Context.ShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			a.Logger.Sugar().Warnf("shutdown: %v", err)
		}
		_ = a.Logger.Sync()
	}()

	if opts.Width > 0 {
		a.Device.Resize(opts.Width, 0)
	}
	out := &Printer{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Compact: a.Device.Current().Kind() == ui.DeviceMobile,
	}
	return fn(ctx, a, out)
}

// requireSession restores the persisted session, which also loads every domain.
func requireSession(ctx context.Context, a *app.App) (domain.Identity, error) {
	a.Session.CheckAuthStatus(ctx)
	identity, ok := a.Session.Identity()
	if !ok {
		return domain.Identity{}, NewExitError(ExitCommandError, `not logged in: run "dialin login"`)
	}
	if msg := a.Session.State().Error; msg != "" {
		return identity, NewExitError(ExitFailure, msg)
	}
	return identity, nil
}

// await waits for an optimistic mutation to reconcile with the backend.
func await[T any](ctx context.Context, op *store.Op[T]) (T, error) {
	result, err := op.Wait(ctx)
	if err != nil {
		var zero T
		return zero, WrapExitError(exitCodeFor(err), "operation failed", err)
	}
	return result, nil
}

func exitCodeFor(err error) int {
	if domain.IsDomainError(err, domain.ErrCodePrecondition) || domain.IsDomainError(err, domain.ErrCodeInvalid) {
		return ExitCommandError
	}
	return ExitFailure
}

// parseID reads a server id argument.
func parseID(arg string) (domain.ID, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return domain.ID{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q", arg))
	}
	return domain.Confirmed(id), nil
}

func parseTime(flag, value string) (domain.Timestamp, error) {
	ts, err := domain.ParseTimestamp(value)
	if err != nil {
		return domain.Timestamp{}, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s", flag), err)
	}
	return ts, nil
}
