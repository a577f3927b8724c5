package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/app"
	"github.com/fastygo/dialin/internal/session"
)

type credentialFlags struct {
	username string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "password (defaults to $DIALIN_PASSWORD)")
}

func (f *credentialFlags) credentials() domain.Credentials {
	password := f.password
	if password == "" {
		password = os.Getenv("DIALIN_PASSWORD")
	}
	return domain.Credentials{Username: f.username, Password: password}
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and download your data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				return authenticate(ctx, a, out, a.Session.Login, flags.credentials())
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				return authenticate(ctx, a, out, a.Session.Register, flags.credentials())
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func authenticate(ctx context.Context, a *app.App, out *Printer, fn func(context.Context, domain.Credentials) bool, creds domain.Credentials) error {
	if !fn(ctx, creds) {
		return NewExitError(ExitFailure, a.Session.State().Error)
	}
	identity, _ := a.Session.Identity()
	return out.Print(sessionView(a, identity), func(w io.Writer) {
		fmt.Fprintf(w, "Signed in as %s (id %d)\n", identity.Username, identity.ID)
		if msg := a.Session.State().Error; msg != "" {
			fmt.Fprintf(w, "warning: %s\n", msg)
		}
		writeCounts(w, a)
	})
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				a.Session.Logout(ctx)
				return out.Print(map[string]bool{"authenticated": false}, func(w io.Writer) {
					fmt.Fprintln(w, "Signed out")
				})
			})
		},
	}
}

type statusView struct {
	Authenticated bool             `json:"authenticated"`
	User          *domain.Identity `json:"user,omitempty"`
	Status        session.Status   `json:"status"`
	Error         string           `json:"error,omitempty"`
	Loaded        []domain.Domain  `json:"loaded,omitempty"`
	Failed        []domain.Domain  `json:"failed,omitempty"`
	Counts        map[string]int   `json:"counts,omitempty"`
	Backend       map[string]any   `json:"backend,omitempty"`
}

func sessionView(a *app.App, identity domain.Identity) statusView {
	state := a.Session.State()
	load := a.Session.Loading()
	view := statusView{
		Authenticated: state.IsAuthenticated(),
		Status:        state.Status,
		Error:         state.Error,
		Loaded:        load.Loaded,
		Failed:        load.Failed,
	}
	if identity.Valid() {
		view.User = &identity
		view.Counts = counts(a)
	}
	return view
}

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the session and backend availability",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				health := a.Monitor.Check(ctx)
				a.Session.CheckAuthStatus(ctx)
				identity, _ := a.Session.Identity()

				view := sessionView(a, identity)
				view.Backend = map[string]any{
					"url":        health.BaseURL,
					"online":     health.Backend,
					"latency_ms": health.Latency.Milliseconds(),
					"error":      health.LastError,
				}
				return out.Print(view, func(w io.Writer) {
					if view.User != nil {
						fmt.Fprintf(w, "Signed in as %s (id %d)\n", identity.Username, identity.ID)
						writeCounts(w, a)
					} else {
						fmt.Fprintln(w, "Not signed in")
					}
					state := "online"
					if !health.Backend {
						state = "offline"
					}
					fmt.Fprintf(w, "Backend %s is %s", health.BaseURL, state)
					if health.LastError != "" && !out.Compact {
						fmt.Fprintf(w, " (%s)", health.LastError)
					}
					fmt.Fprintln(w)
					if ks := a.Keystore(); ks != nil && !out.Compact {
						stats := ks.Stats()
						fmt.Fprintf(w, "Keystore transactions: %d\n", stats.TxN)
					}
				})
			})
		},
	}
}
