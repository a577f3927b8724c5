package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fastygo/dialin/internal/app"
	"github.com/fastygo/dialin/internal/bus"
)

func newWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the session fresh, reloading on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				ctx, cancel := a.WithSignals(ctx)
				defer cancel()

				unsubscribe := bus.Subscribe(a.Bus, bus.DataLoading, func(ev bus.DataLoadingEvent) error {
					if ev.Status == bus.LoadStatusLoading {
						return nil
					}
					return out.Print(ev, func(w io.Writer) {
						line := fmt.Sprintf("%s %s", ev.Domain, ev.Status)
						if ev.Error != "" {
							line += ": " + ev.Error
						}
						fmt.Fprintln(w, line)
					})
				})
				defer unsubscribe()

				if _, err := requireSession(ctx, a); err != nil {
					return err
				}

				a.StartMonitor()
				refresher, err := a.NewRefresher()
				if err != nil {
					return WrapExitError(ExitCommandError, "watch", err)
				}
				refresher.Start()

				<-ctx.Done()
				return nil
			})
		},
	}
}
