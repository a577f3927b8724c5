package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/app"
)

func newTaskCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, edit, complete and delete tasks",
	}
	cmd.AddCommand(newTaskAddCommand(opts))
	cmd.AddCommand(newTaskUpdateCommand(opts))
	cmd.AddCommand(newTaskCompletionCommand(opts, "done", "Mark a task completed", true))
	cmd.AddCommand(newTaskCompletionCommand(opts, "undo", "Mark a task open again", false))
	cmd.AddCommand(newDeleteCommand(opts, "Delete a task", func(a *app.App) deleter[domain.Task] { return a.Tasks }))
	return cmd
}

type taskFlags struct {
	title       string
	description string
	category    int64
	noCategory  bool
	rule        int64
	due         string
	noDue       bool
	done        bool
}

func (f *taskFlags) bind(cmd *cobra.Command, update bool) {
	cmd.Flags().StringVar(&f.description, "description", "", "free-form notes")
	cmd.Flags().Int64Var(&f.category, "category", 0, "category id")
	cmd.Flags().Int64Var(&f.rule, "rule", 0, "rule id")
	cmd.Flags().StringVar(&f.due, "due", "", "due date, e.g. 2025-03-01T17:00")
	if update {
		cmd.Flags().StringVar(&f.title, "title", "", "new title")
		cmd.Flags().BoolVar(&f.noCategory, "no-category", false, "remove the category")
		cmd.Flags().BoolVar(&f.noDue, "no-due", false, "remove the due date")
		return
	}
	cmd.Flags().BoolVar(&f.done, "done", false, "create the task already completed")
}

func newTaskAddCommand(opts *RootOptions) *cobra.Command {
	flags := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				draft := domain.Task{Title: args[0], IsCompleted: flags.done}
				if flags.description != "" {
					draft.Description = &flags.description
				}
				if flags.category > 0 {
					draft.CategoryID = &flags.category
				}
				if flags.rule > 0 {
					draft.RuleID = &flags.rule
				}
				if flags.due != "" {
					due, err := parseTime("due", flags.due)
					if err != nil {
						return err
					}
					draft.DueDate = &due
				}
				created, err := await(ctx, a.Tasks.Add(ctx, draft))
				if err != nil {
					return err
				}
				return printTask(out, created)
			})
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func newTaskUpdateCommand(opts *RootOptions) *cobra.Command {
	flags := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a task; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				updated, err := await(ctx, a.Tasks.Update(ctx, id, patch))
				if err != nil {
					return err
				}
				return printTask(out, updated)
			})
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func (f *taskFlags) patch(cmd *cobra.Command) (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	changed := cmd.Flags().Changed
	if changed("title") {
		patch.Title = &f.title
	}
	if changed("description") {
		patch.Description = domain.Set(f.description)
	}
	switch {
	case f.noCategory:
		patch.CategoryID = domain.Null[int64]()
	case changed("category"):
		patch.CategoryID = domain.Set(f.category)
	}
	if changed("rule") {
		patch.RuleID = domain.Set(f.rule)
	}
	switch {
	case f.noDue:
		patch.DueDate = domain.Null[domain.Timestamp]()
	case changed("due"):
		due, err := parseTime("due", f.due)
		if err != nil {
			return patch, err
		}
		patch.DueDate = domain.Set(due)
	}
	if patch == (domain.TaskPatch{}) {
		return patch, NewExitError(ExitCommandError, "nothing to update")
	}
	return patch, nil
}

func newTaskCompletionCommand(opts *RootOptions, use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
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
				updated, err := await(ctx, a.Tasks.SetCompleted(ctx, id, done))
				if err != nil {
					return err
				}
				return printTask(out, updated)
			})
		},
	}
}

func printTask(out *Printer, t domain.Task) error {
	return out.Print(t, func(w io.Writer) {
		fmt.Fprintln(w, taskLine(t, time.Now(), out.Compact))
	})
}
