package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	Width   int

	// Bootstrap builds the client for one command invocation.
	Bootstrap Bootstrap
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command of the dialin CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Bootstrap: DefaultBootstrap})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dialin",
		Short: "Dial-In task, event and rule manager",
		Long: `Dial-In keeps your tasks, categories, events and recurrence rules in sync
with the Dial-In backend. Sign in once with "dialin login"; later commands
restore the session automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().IntVar(&opts.Width, "width", 0, "terminal width used to pick a compact layout (0 = desktop)")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newViewCommand(opts))
	cmd.AddCommand(newTaskCommand(opts))
	cmd.AddCommand(newCategoryCommand(opts))
	cmd.AddCommand(newEventCommand(opts))
	cmd.AddCommand(newRuleCommand(opts))
	cmd.AddCommand(newPrefsCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))

	return cmd
}
