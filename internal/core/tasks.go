// ABOUTME: TaskManager ties the task parser to the task repository for one user
// ABOUTME: Also renders reminder/todo lists and the task summary for chat replies
package core

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
	"go.uber.org/zap"
)

// TaskKind says whether a command refers to a reminder or a todo
type TaskKind string

const (
	TaskKindUnknown  TaskKind = ""
	TaskKindReminder TaskKind = "reminder"
	TaskKindTodo     TaskKind = "todo"
)

// DefaultTodoCategory is used when a todo names no category
const DefaultTodoCategory = "general"

var taskIDPattern = regexp.MustCompile(`\d+`)

// TaskRef is a parsed "complete todo 3" style reference
type TaskRef struct {
	Kind TaskKind
	ID   int64
}

// ParseTaskRef finds the task kind and the first number in text.
// ok is false when no number is present.
func ParseTaskRef(text string) (ref TaskRef, ok bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "reminder"):
		ref.Kind = TaskKindReminder
	case strings.Contains(lower, "todo"), strings.Contains(lower, "task"):
		ref.Kind = TaskKindTodo
	}

	num := taskIDPattern.FindString(text)
	if num == "" {
		return ref, false
	}
	id, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return ref, false
	}
	ref.ID = id
	return ref, true
}

// TaskManager creates, lists and updates one user's reminders and todos
type TaskManager struct {
	repo   storage.TaskRepository
	userID string
	now    func() time.Time
	logger *zap.Logger
}

// NewTaskManager creates a TaskManager; a nil logger discards output
func NewTaskManager(repo storage.TaskRepository, userID string, now func() time.Time, logger *zap.Logger) *TaskManager {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskManager{repo: repo, userID: userID, now: now, logger: logger}
}

// CreateReminderFromText parses and stores a reminder
func (m *TaskManager) CreateReminderFromText(ctx context.Context, text string) (*models.Reminder, error) {
	r, err := ParseReminder(text, m.now())
	if err != nil {
		return nil, err
	}
	if _, err := m.repo.CreateReminder(ctx, m.userID, r); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	m.logger.Info("reminder created", zap.Int64("id", r.ID), zap.String("priority", string(r.Priority)))
	return r, nil
}

// CreateTodoFromText parses and stores a todo
func (m *TaskManager) CreateTodoFromText(ctx context.Context, text string) (*models.Todo, error) {
	t, err := ParseTodo(text)
	if err != nil {
		return nil, err
	}
	if t.Category == "" {
		t.Category = DefaultTodoCategory
	}
	if _, err := m.repo.CreateTodo(ctx, m.userID, t); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	m.logger.Info("todo created", zap.Int64("id", t.ID), zap.Strings("tags", t.Tags))
	return t, nil
}

// Reminders lists reminders with the given status in display order
func (m *TaskManager) Reminders(ctx context.Context, status models.TaskStatus) ([]models.Reminder, error) {
	return m.repo.ListReminders(ctx, m.userID, status)
}

// Todos lists todos with the given status in display order
func (m *TaskManager) Todos(ctx context.Context, status models.TaskStatus) ([]models.Todo, error) {
	return m.repo.ListTodos(ctx, m.userID, status)
}

// Complete marks the referenced task completed; false means it does not exist
func (m *TaskManager) Complete(ctx context.Context, ref TaskRef) (bool, error) {
	switch ref.Kind {
	case TaskKindReminder:
		return m.repo.CompleteReminder(ctx, m.userID, ref.ID)
	case TaskKindTodo:
		return m.repo.CompleteTodo(ctx, m.userID, ref.ID)
	default:
		return false, fmt.Errorf("unknown task kind %q", ref.Kind)
	}
}

// Delete removes the referenced task; false means it does not exist
func (m *TaskManager) Delete(ctx context.Context, ref TaskRef) (bool, error) {
	switch ref.Kind {
	case TaskKindReminder:
		return m.repo.DeleteReminder(ctx, m.userID, ref.ID)
	case TaskKindTodo:
		return m.repo.DeleteTodo(ctx, m.userID, ref.ID)
	default:
		return false, fmt.Errorf("unknown task kind %q", ref.Kind)
	}
}

// Counts tallies pending and completed reminders and todos
func (m *TaskManager) Counts(ctx context.Context) (models.TaskCounts, error) {
	var counts models.TaskCounts

	reminders, err := m.repo.ListReminders(ctx, m.userID, models.StatusAll)
	if err != nil {
		return counts, err
	}
	for _, r := range reminders {
		if r.Status == models.StatusCompleted {
			counts.CompletedReminders++
		} else {
			counts.PendingReminders++
		}
	}

	todos, err := m.repo.ListTodos(ctx, m.userID, models.StatusAll)
	if err != nil {
		return counts, err
	}
	for _, t := range todos {
		if t.Status == models.StatusCompleted {
			counts.CompletedTodos++
		} else {
			counts.PendingTodos++
		}
	}
	return counts, nil
}

// FormatReminders renders reminders as a chat list
func FormatReminders(reminders []models.Reminder) string {
	if len(reminders) == 0 {
		return "You have no reminders. Create one by saying 'Remind me to...'"
	}

	var b strings.Builder
	b.WriteString("**Your Reminders:**\n\n")
	for _, r := range reminders {
		status := "⏰"
		if r.Status == models.StatusCompleted {
			status = "✅"
		}
		fmt.Fprintf(&b, "%s %s **[%d]** %s\n", status, r.Priority.Marker(), r.ID, r.Title)
		if r.DueDate != "" {
			fmt.Fprintf(&b, "   📅 Due: %s", r.DueDate)
			if r.DueTime != "" {
				fmt.Fprintf(&b, " at %s", r.DueTime)
			}
			b.WriteString("\n")
		}
		if r.Description != "" {
			fmt.Fprintf(&b, "   📝 %s\n", r.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTodos renders todos as a chat list
func FormatTodos(todos []models.Todo) string {
	if len(todos) == 0 {
		return "You have no todos. Create one by saying 'Add todo...'"
	}

	var b strings.Builder
	b.WriteString("**Your Todos:**\n\n")
	for _, t := range todos {
		status := "☐"
		if t.Status == models.StatusCompleted {
			status = "☑️"
		}
		fmt.Fprintf(&b, "%s %s **[%d]** %s\n", status, t.Priority.Marker(), t.ID, t.Title)
		if t.Category != "" {
			fmt.Fprintf(&b, "   📂 Category: %s\n", t.Category)
		}
		if len(t.Tags) > 0 {
			fmt.Fprintf(&b, "   🏷️ Tags: %s\n", strings.Join(t.Tags, ", "))
		}
		if t.DueDate != "" {
			fmt.Fprintf(&b, "   📅 Due: %s\n", t.DueDate)
		}
		if t.Description != "" {
			fmt.Fprintf(&b, "   📝 %s\n", t.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTaskSummary renders the pending/completed counts
func FormatTaskSummary(c models.TaskCounts) string {
	return fmt.Sprintf(`**Task Summary:**

⏰ Reminders: %d pending, %d completed
☐ Todos: %d pending, %d completed

Type 'show reminders' or 'show todos' to see details.`,
		c.PendingReminders, c.CompletedReminders, c.PendingTodos, c.CompletedTodos)
}
