package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/app"
	"github.com/fastygo/dialin/internal/store"
)

type deleter[T any] interface {
	Delete(ctx context.Context, id domain.ID) *store.Op[T]
}

func newDeleteCommand[T any](opts *RootOptions, short string, pick func(*app.App) deleter[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				if _, err := await(ctx, pick(a).Delete(ctx, id)); err != nil {
					return err
				}
				return out.Print(map[string]string{"deleted": id.String()}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %s\n", id)
				})
			})
		},
	}
}

// optionalString maps a changed string flag to a patch field; an empty value clears it.
func optionalString(cmd *cobra.Command, name, value string) domain.Optional[string] {
	if !cmd.Flags().Changed(name) {
		return domain.Optional[string]{}
	}
	if value == "" {
		return domain.Null[string]()
	}
	return domain.Set(value)
}

// optionalID maps a changed id flag to a patch field; zero clears it.
func optionalID(cmd *cobra.Command, name string, value int64) domain.Optional[int64] {
	if !cmd.Flags().Changed(name) {
		return domain.Optional[int64]{}
	}
	if value <= 0 {
		return domain.Null[int64]()
	}
	return domain.Set(value)
}

func ptrIf[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func newCategoryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "category", Short: "Manage categories"}

	var name, description, icon string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				created, err := await(ctx, a.Categories.Add(ctx, domain.Category{
					Name:        args[0],
					Description: ptrIf(description),
					Icon:        ptrIf(icon),
				}))
				if err != nil {
					return err
				}
				return printCategories(out, []domain.Category{created})
			})
		},
	}
	add.Flags().StringVar(&description, "description", "", "description")
	add.Flags().StringVar(&icon, "icon", "", "icon, usually an emoji")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a category; an empty --description or --icon clears it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch := domain.CategoryPatch{
				Description: optionalString(cmd, "description", description),
				Icon:        optionalString(cmd, "icon", icon),
			}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if patch == (domain.CategoryPatch{}) {
				return NewExitError(ExitCommandError, "nothing to update")
			}
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				updated, err := await(ctx, a.Categories.Update(ctx, id, patch))
				if err != nil {
					return err
				}
				return printCategories(out, []domain.Category{updated})
			})
		},
	}
	update.Flags().StringVar(&name, "name", "", "new name")
	update.Flags().StringVar(&description, "description", "", "description")
	update.Flags().StringVar(&icon, "icon", "", "icon")

	cmd.AddCommand(add, update,
		newDeleteCommand(opts, "Delete a category; its tasks become uncategorized",
			func(a *app.App) deleter[domain.Category] { return a.Categories }))
	return cmd
}

func newEventCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "event", Short: "Manage calendar events"}

	var (
		title, description, start, end string
		category, rule                 int64
	)
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime, err := parseTime("start", start)
			if err != nil {
				return err
			}
			draft := domain.Event{
				Title:       args[0],
				Description: ptrIf(description),
				CategoryID:  ptrIf(category),
				RuleID:      ptrIf(rule),
				StartTime:   startTime,
			}
			if end != "" {
				endTime, err := parseTime("end", end)
				if err != nil {
					return err
				}
				draft.EndTime = &endTime
			}
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				created, err := await(ctx, a.Events.Add(ctx, draft))
				if err != nil {
					return err
				}
				return printEvents(out, []domain.Event{created})
			})
		},
	}
	add.Flags().StringVar(&start, "start", "", "start time, e.g. 2025-03-01T09:00")
	add.Flags().StringVar(&end, "end", "", "end time")
	add.Flags().StringVar(&description, "description", "", "description")
	add.Flags().Int64Var(&category, "category", 0, "category id")
	add.Flags().Int64Var(&rule, "rule", 0, "rule id")
	_ = add.MarkFlagRequired("start")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch := domain.EventPatch{
				Description: optionalString(cmd, "description", description),
				CategoryID:  optionalID(cmd, "category", category),
				RuleID:      optionalID(cmd, "rule", rule),
			}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("start") {
				startTime, err := parseTime("start", start)
				if err != nil {
					return err
				}
				patch.StartTime = &startTime
			}
			if cmd.Flags().Changed("end") {
				if end == "" {
					patch.EndTime = domain.Null[domain.Timestamp]()
				} else {
					endTime, err := parseTime("end", end)
					if err != nil {
						return err
					}
					patch.EndTime = domain.Set(endTime)
				}
			}
			if patch == (domain.EventPatch{}) {
				return NewExitError(ExitCommandError, "nothing to update")
			}
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				updated, err := await(ctx, a.Events.Update(ctx, id, patch))
				if err != nil {
					return err
				}
				return printEvents(out, []domain.Event{updated})
			})
		},
	}
	update.Flags().StringVar(&title, "title", "", "new title")
	update.Flags().StringVar(&start, "start", "", "start time")
	update.Flags().StringVar(&end, "end", "", "end time; empty clears it")
	update.Flags().StringVar(&description, "description", "", "description")
	update.Flags().Int64Var(&category, "category", 0, "category id; 0 clears it")
	update.Flags().Int64Var(&rule, "rule", 0, "rule id; 0 clears it")

	cmd.AddCommand(add, update,
		newDeleteCommand(opts, "Delete an event", func(a *app.App) deleter[domain.Event] { return a.Events }))
	return cmd
}

func newRuleCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "rule", Short: "Manage recurrence rules"}

	var (
		name, description, pattern string
		category                   int64
		active                     bool
	)
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				created, err := await(ctx, a.Rules.Add(ctx, domain.Rule{
					Name:        args[0],
					Description: ptrIf(description),
					CategoryID:  ptrIf(category),
					RatePattern: pattern,
					IsActive:    active,
				}))
				if err != nil {
					return err
				}
				return printRules(out, []domain.Rule{created})
			})
		},
	}
	add.Flags().StringVar(&pattern, "pattern", "", "rate pattern, e.g. w#1M#1,2,3T#09:00")
	add.Flags().StringVar(&description, "description", "", "description")
	add.Flags().Int64Var(&category, "category", 0, "category id")
	add.Flags().BoolVar(&active, "active", true, "whether the rule generates entries")
	_ = add.MarkFlagRequired("pattern")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch := domain.RulePatch{
				Description: optionalString(cmd, "description", description),
				CategoryID:  optionalID(cmd, "category", category),
			}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("pattern") {
				patch.RatePattern = &pattern
			}
			if cmd.Flags().Changed("active") {
				patch.IsActive = &active
			}
			if patch == (domain.RulePatch{}) {
				return NewExitError(ExitCommandError, "nothing to update")
			}
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				updated, err := await(ctx, a.Rules.Update(ctx, id, patch))
				if err != nil {
					return err
				}
				return printRules(out, []domain.Rule{updated})
			})
		},
	}
	update.Flags().StringVar(&name, "name", "", "new name")
	update.Flags().StringVar(&pattern, "pattern", "", "rate pattern")
	update.Flags().StringVar(&description, "description", "", "description")
	update.Flags().Int64Var(&category, "category", 0, "category id; 0 clears it")
	update.Flags().BoolVar(&active, "active", true, "pause (false) or resume (true)")

	cmd.AddCommand(add, update,
		newDeleteCommand(opts, "Delete a rule", func(a *app.App) deleter[domain.Rule] { return a.Rules }))
	return cmd
}
