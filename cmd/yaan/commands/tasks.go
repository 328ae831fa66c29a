// ABOUTME: CLI commands to manage reminders and todos
// ABOUTME: list, add, done and delete for each task kind, with table or JSON output
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/harper/yaan/internal/core"
	"github.com/harper/yaan/internal/models"
	"github.com/spf13/cobra"
)

// NewRemindersCmd creates the reminders command group
func NewRemindersCmd() *cobra.Command {
	return newTaskCmd(core.TaskKindReminder, "reminders", `Manage reminders.

Reminders are dated tasks. Dates like "tomorrow" or "next week" and
times like "3pm" or "15:30" are understood; "urgent" or "important"
make a reminder high priority.

Examples:
  yaan reminders
  yaan reminders --status all
  yaan reminders add "call John tomorrow at 3pm"
  yaan reminders done 2
  yaan reminders delete 2`)
}

// NewTodosCmd creates the todos command group
func NewTodosCmd() *cobra.Command {
	return newTaskCmd(core.TaskKindTodo, "todos", `Manage todos.

Todos may carry #tags, a "category: <word>" and a priority.

Examples:
  yaan todos
  yaan todos --format json
  yaan todos add "write docs #work urgent"
  yaan todos done 3
  yaan todos delete 3`)
}

func newTaskCmd(kind core.TaskKind, use, long string) *cobra.Command {
	var status string
	var all bool

	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("List and manage %s", use),
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				status = string(models.StatusAll)
			}
			st, err := parseTaskStatus(status)
			if err != nil {
				return err
			}
			return runTaskList(cmd, kind, st)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(models.StatusPending), "Which tasks to show (pending, completed, all)")
	cmd.Flags().BoolVar(&all, "all", false, "Show pending and completed tasks")

	cmd.AddCommand(&cobra.Command{
		Use:   "add <text>",
		Short: fmt.Sprintf("Add a %s from free text", kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskAdd(cmd, kind, strings.Join(args, " "))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "done <id>",
		Short: fmt.Sprintf("Mark a %s as complete", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskChange(cmd, kind, args[0], "completed")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskChange(cmd, kind, args[0], "deleted")
		},
	})

	return cmd
}

func parseTaskStatus(s string) (models.TaskStatus, error) {
	switch st := models.TaskStatus(strings.ToLower(s)); st {
	case models.StatusPending, models.StatusCompleted, models.StatusAll:
		return st, nil
	default:
		return "", fmt.Errorf("status must be pending, completed or all, got %q", s)
	}
}

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	if err := validatePositiveInt(int(id), "id"); err != nil {
		return 0, err
	}
	return id, nil
}

func runTaskList(cmd *cobra.Command, kind core.TaskKind, status models.TaskStatus) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	tasks := s.assistant.Tasks()

	var items interface{}
	var count int
	if kind == core.TaskKindReminder {
		reminders, err := tasks.Reminders(cmd.Context(), status)
		if err != nil {
			return fmt.Errorf("failed to list reminders: %w", err)
		}
		items, count = reminders, len(reminders)
		if count > 0 && outputFormat != "json" {
			writeReminderTable(out, reminders)
		}
	} else {
		todos, err := tasks.Todos(cmd.Context(), status)
		if err != nil {
			return fmt.Errorf("failed to list todos: %w", err)
		}
		items, count = todos, len(todos)
		if count > 0 && outputFormat != "json" {
			writeTodoTable(out, todos)
		}
	}

	if count == 0 {
		if outputFormat == "json" {
			fmt.Fprintln(out, "[]")
		} else if !quiet && status == models.StatusAll {
			fmt.Fprintf(out, "No %ss\n", kind)
		} else if !quiet {
			fmt.Fprintf(out, "No %s %ss\n", status, kind)
		}
		return nil
	}

	if outputFormat == "json" {
		return writeJSON(out, items)
	}

	if !quiet {
		fmt.Fprintf(out, "\nTotal: %d %s(s)\n", count, kind)
	}
	return nil
}

func writeReminderTable(out io.Writer, reminders []models.Reminder) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tPRIORITY\tTITLE\tDUE\tSTATUS\tCREATED\n")
	fmt.Fprintf(w, "--\t--------\t-----\t---\t------\t-------\n")
	for _, r := range reminders {
		due := strings.TrimSpace(r.DueDate + " " + r.DueTime)
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Priority.Marker(), r.Priority,
			truncate(r.Title, 40),
			due,
			r.Status,
			humanize.Time(r.CreatedAt))
	}
	w.Flush()
}

func writeTodoTable(out io.Writer, todos []models.Todo) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tPRIORITY\tTITLE\tCATEGORY\tTAGS\tSTATUS\tCREATED\n")
	fmt.Fprintf(w, "--\t--------\t-----\t--------\t----\t------\t-------\n")
	for _, t := range todos {
		tags := "-"
		if len(t.Tags) > 0 {
			tags = "#" + strings.Join(t.Tags, " #")
		}
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Priority.Marker(), t.Priority,
			truncate(t.Title, 40),
			t.Category,
			truncate(tags, 30),
			t.Status,
			humanize.Time(t.CreatedAt))
	}
	w.Flush()
}

func runTaskAdd(cmd *cobra.Command, kind core.TaskKind, text string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	tasks := s.assistant.Tasks()

	if kind == core.TaskKindReminder {
		if !strings.HasPrefix(strings.ToLower(text), "remind me") {
			text = "remind me to " + text
		}
		r, err := tasks.CreateReminderFromText(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("failed to add reminder: %w", err)
		}
		if outputFormat == "json" {
			return writeJSON(out, r)
		}
		fmt.Fprintf(out, "Added reminder #%d: %s\n", r.ID, r.Title)
		return nil
	}

	t, err := tasks.CreateTodoFromText(cmd.Context(), "add todo: "+text)
	if err != nil {
		return fmt.Errorf("failed to add todo: %w", err)
	}
	if outputFormat == "json" {
		return writeJSON(out, t)
	}
	fmt.Fprintf(out, "Added todo #%d: %s\n", t.ID, t.Title)
	return nil
}

func runTaskChange(cmd *cobra.Command, kind core.TaskKind, arg, verb string) error {
	id, err := parseTaskID(arg)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	ref := core.TaskRef{Kind: kind, ID: id}
	tasks := s.assistant.Tasks()

	var ok bool
	if verb == "deleted" {
		ok, err = tasks.Delete(cmd.Context(), ref)
	} else {
		ok, err = tasks.Complete(cmd.Context(), ref)
	}
	if err != nil {
		return fmt.Errorf("failed to update %s #%d: %w", kind, id, err)
	}
	if !ok {
		return fmt.Errorf("%s #%d not found", kind, id)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", strings.ToUpper(string(kind[:1]))+string(kind[1:]), id, verb)
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintf(out, "%s\n", jsonData)
	return nil
}
