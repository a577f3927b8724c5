package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/app"
	"github.com/fastygo/dialin/internal/ui"
)

func counts(a *app.App) map[string]int {
	return map[string]int{
		string(domain.DomainCategories): a.Categories.Len(),
		string(domain.DomainTasks):      a.Tasks.Len(),
		string(domain.DomainEvents):     a.Events.Len(),
		string(domain.DomainRules):      a.Rules.Len(),
	}
}

func writeCounts(w io.Writer, a *app.App) {
	fmt.Fprintf(w, "%d categories, %d tasks, %d events, %d rules\n",
		a.Categories.Len(), a.Tasks.Len(), a.Events.Len(), a.Rules.Len())
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "list <categories|tasks|events|rules>",
		Short:     "Print one domain",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"categories", "tasks", "events", "rules"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if _, err := requireSession(ctx, a); err != nil {
					return err
				}
				switch domain.Domain(args[0]) {
				case domain.DomainCategories:
					return printCategories(out, a.Categories.Items())
				case domain.DomainTasks:
					return printTasks(out, a.Tasks.Items(), time.Now())
				case domain.DomainEvents:
					return printEvents(out, a.Events.Items())
				case domain.DomainRules:
					return printRules(out, a.Rules.Items())
				}
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown domain %q", args[0]))
			})
		},
	}
}

func newViewCommand(opts *RootOptions) *cobra.Command {
	names := make([]string, 0, len(ui.Pages))
	for _, p := range ui.Pages {
		names = append(names, strings.ToLower(string(p)))
	}
	return &cobra.Command{
		Use:       "view [page]",
		Short:     "Render a page: " + strings.Join(names, ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app.App, out *Printer) error {
				if len(args) == 1 {
					page, err := ui.ParsePage(args[0])
					if err != nil {
						return WrapExitError(ExitCommandError, "view", err)
					}
					a.Navigation.NavigateTo(page)
				}
				identity, err := requireSession(ctx, a)
				if err != nil {
					return err
				}
				return renderPage(ctx, a, out, identity, a.Navigation.Current())
			})
		},
	}
}

type dashboardView struct {
	User     domain.Identity `json:"user"`
	Counts   map[string]int  `json:"counts"`
	Overdue  []domain.Task   `json:"overdue"`
	Upcoming []domain.Event  `json:"upcoming"`
	Active   []domain.Rule   `json:"active_rules"`
}

func renderPage(ctx context.Context, a *app.App, out *Printer, identity domain.Identity, page ui.Page) error {
	now := time.Now()
	switch page {
	case ui.PageTasks:
		return printTasks(out, visibleTasks(ctx, a, now), now)
	case ui.PageCalendar:
		return printEvents(out, a.Events.Between(startOfDay(now), startOfDay(now).AddDate(0, 0, 7)))
	case ui.PageRules:
		return printRules(out, a.Rules.Items())
	case ui.PageCategories:
		return printCategories(out, a.Categories.Items())
	case ui.PageUsers:
		return out.Print(identity, func(w io.Writer) {
			fmt.Fprintf(w, "%d\t%s\n", identity.ID, identity.Username)
		})
	default:
		view := dashboardView{
			User:     identity,
			Counts:   counts(a),
			Upcoming: a.Events.Between(now, now.Add(24*time.Hour)),
			Active:   a.Rules.Active(),
		}
		for _, t := range a.Tasks.Items() {
			if t.IsOverdue(now) {
				view.Overdue = append(view.Overdue, t)
			}
		}
		return out.Print(view, func(w io.Writer) {
			fmt.Fprintf(w, "Hello, %s\n", identity.Username)
			writeCounts(w, a)
			fmt.Fprintf(w, "%d overdue tasks, %d events in the next 24h, %d active rules\n",
				len(view.Overdue), len(view.Upcoming), len(view.Active))
			for _, t := range view.Overdue {
				fmt.Fprintln(w, "  "+taskLine(t, now, out.Compact))
			}
		})
	}
}

// visibleTasks applies the user's filter preferences.
func visibleTasks(ctx context.Context, a *app.App, now time.Time) []domain.Task {
	prefs, err := a.Preferences.Load(ctx)
	if err != nil {
		prefs = domain.DefaultPreferences(0)
	}
	var out []domain.Task
	for _, t := range a.Tasks.Items() {
		switch {
		case !prefs.ShowUndated && t.DueDate == nil:
		case !prefs.ShowUncategorized && t.CategoryID == nil:
		case !prefs.ShowOverdue && t.IsOverdue(now):
		default:
			out = append(out, t)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func printTasks(out *Printer, tasks []domain.Task, now time.Time) error {
	tasks = nonNil(tasks)
	return out.Print(tasks, func(w io.Writer) {
		for _, t := range tasks {
			fmt.Fprintln(w, taskLine(t, now, out.Compact))
		}
	})
}

func taskLine(t domain.Task, now time.Time, compact bool) string {
	mark := " "
	if t.IsCompleted {
		mark = "x"
	}
	line := fmt.Sprintf("%s [%s] %s", t.ID, mark, t.Title)
	if compact {
		return line
	}
	if t.DueDate != nil {
		line += " due " + t.DueDate.Local().Format("2006-01-02 15:04")
		if t.IsOverdue(now) {
			line += " (overdue)"
		}
	}
	if t.CategoryID != nil {
		line += fmt.Sprintf(" #%d", *t.CategoryID)
	}
	return line
}

func printCategories(out *Printer, categories []domain.Category) error {
	categories = nonNil(categories)
	return out.Print(categories, func(w io.Writer) {
		for _, c := range categories {
			line := fmt.Sprintf("%s %s", c.ID, c.Name)
			if c.Icon != nil {
				line = fmt.Sprintf("%s %s %s", c.ID, *c.Icon, c.Name)
			}
			if c.Description != nil && !out.Compact {
				line += " - " + *c.Description
			}
			fmt.Fprintln(w, line)
		}
	})
}

func printEvents(out *Printer, events []domain.Event) error {
	events = nonNil(events)
	slices.SortFunc(events, func(a, b domain.Event) int {
		return a.StartTime.Compare(b.StartTime.Time)
	})
	return out.Print(events, func(w io.Writer) {
		for _, e := range events {
			line := fmt.Sprintf("%s %s %s", e.ID, e.StartTime.Local().Format("2006-01-02 15:04"), e.Title)
			if e.EndTime != nil && !out.Compact {
				line += " until " + e.EndTime.Local().Format("15:04")
			}
			fmt.Fprintln(w, line)
		}
	})
}

func printRules(out *Printer, rules []domain.Rule) error {
	rules = nonNil(rules)
	return out.Print(rules, func(w io.Writer) {
		for _, r := range rules {
			state := "active"
			if !r.IsActive {
				state = "paused"
			}
			line := fmt.Sprintf("%s %s [%s]", r.ID, r.Name, state)
			if !out.Compact {
				line += " " + r.RatePattern
			}
			fmt.Fprintln(w, line)
		}
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
