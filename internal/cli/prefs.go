package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/app"
)

func newPrefsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "prefs", Short: "Show or change display preferences"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				prefs, err := a.Preferences.Load(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "load preferences", err)
				}
				return printPrefs(out, prefs)
			})
		},
	}

	var (
		theme, period                           string
		showUndated, showUncategorized, overdue bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change preferences; only the given flags change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.PreferencesPatch
			changed := cmd.Flags().Changed
			if changed("theme") {
				patch.Theme = &theme
			}
			if changed("period") {
				patch.TimePeriod = &period
			}
			if changed("show-undated") {
				patch.ShowUndated = &showUndated
			}
			if changed("show-uncategorized") {
				patch.ShowUncategorized = &showUncategorized
			}
			if changed("show-overdue") {
				patch.ShowOverdue = &overdue
			}
			if patch.IsEmpty() {
				return NewExitError(ExitCommandError, "nothing to update")
			}
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				if _, err := a.Preferences.Load(ctx); err != nil {
					return WrapExitError(ExitFailure, "load preferences", err)
				}
				prefs, err := await(ctx, a.Preferences.Update(ctx, patch))
				if err != nil {
					return err
				}
				return printPrefs(out, prefs)
			})
		},
	}
	set.Flags().StringVar(&theme, "theme", "", "light or dark")
	set.Flags().StringVar(&period, "period", "", "default time period, e.g. today, week")
	set.Flags().BoolVar(&showUndated, "show-undated", true, "list tasks without a due date")
	set.Flags().BoolVar(&showUncategorized, "show-uncategorized", true, "list tasks without a category")
	set.Flags().BoolVar(&overdue, "show-overdue", true, "list overdue tasks")

	cmd.AddCommand(show, set)
	return cmd
}

func printPrefs(out *Printer, prefs domain.Preferences) error {
	return out.Print(prefs, func(w io.Writer) {
		fmt.Fprintf(w, "theme:              %s\n", prefs.Theme)
		fmt.Fprintf(w, "time period:        %s\n", prefs.TimePeriod)
		fmt.Fprintf(w, "show undated:       %t\n", prefs.ShowUndated)
		fmt.Fprintf(w, "show uncategorized: %t\n", prefs.ShowUncategorized)
		fmt.Fprintf(w, "show overdue:       %t\n", prefs.ShowOverdue)
	})
}
