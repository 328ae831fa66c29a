// ABOUTME: Tests for TaskManager and the task list formatting
// ABOUTME: Exercises the create/list/complete/delete round trip against in-memory SQLite
package core

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harper/yaan/internal/models"
	"go.uber.org/zap/zaptest"
)

func newTestTaskManager(t *testing.T) *TaskManager {
	t.Helper()
	clock := newTestClock()
	return NewTaskManager(newTestStore(t), "u1", clock.Now, zaptest.NewLogger(t))
}

func TestParseTaskRef(t *testing.T) {
	tests := []struct {
		text   string
		want   TaskRef
		wantOK bool
	}{
		{"complete reminder 3", TaskRef{Kind: TaskKindReminder, ID: 3}, true},
		{"done todo 12", TaskRef{Kind: TaskKindTodo, ID: 12}, true},
		{"finish task 7", TaskRef{Kind: TaskKindTodo, ID: 7}, true},
		{"mark 4 as done", TaskRef{Kind: TaskKindUnknown, ID: 4}, true},
		{"complete reminder", TaskRef{Kind: TaskKindReminder}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseTaskRef(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParseTaskRef(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseTaskRef(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTaskManager_ReminderRoundTrip(t *testing.T) {
	m := newTestTaskManager(t)
	ctx := context.Background()

	created, err := m.CreateReminderFromText(ctx, "remind me to call John tomorrow at 3pm")
	if err != nil {
		t.Fatalf("CreateReminderFromText() error = %v", err)
	}

	pending, err := m.Reminders(ctx, models.StatusPending)
	if err != nil {
		t.Fatalf("Reminders() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("len(pending) = %d, want 1", len(pending))
	}
	got := pending[0]
	if got.ID != created.ID || got.Title != "call John" || got.DueDate != "2026-10-16" || got.DueTime != "15:00" {
		t.Errorf("pending reminder = %+v, want fields of %+v", got, created)
	}

	ok, err := m.Complete(ctx, TaskRef{Kind: TaskKindReminder, ID: created.ID})
	if err != nil || !ok {
		t.Fatalf("Complete() = %v, %v; want true, nil", ok, err)
	}

	pending, _ = m.Reminders(ctx, models.StatusPending)
	if len(pending) != 0 {
		t.Errorf("len(pending) after complete = %d, want 0", len(pending))
	}
	completed, err := m.Reminders(ctx, models.StatusCompleted)
	if err != nil {
		t.Fatalf("Reminders(completed) error = %v", err)
	}
	if len(completed) != 1 || completed[0].CompletedAt == nil {
		t.Errorf("completed = %+v, want one reminder with CompletedAt set", completed)
	}
}

func TestTaskManager_MissingTaskReportsFalse(t *testing.T) {
	m := newTestTaskManager(t)
	ctx := context.Background()

	ok, err := m.Complete(ctx, TaskRef{Kind: TaskKindTodo, ID: 99})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if ok {
		t.Error("Complete() of missing todo = true, want false")
	}

	ok, err = m.Delete(ctx, TaskRef{Kind: TaskKindReminder, ID: 99})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok {
		t.Error("Delete() of missing reminder = true, want false")
	}

	if _, err := m.Delete(ctx, TaskRef{ID: 1}); err == nil {
		t.Error("Delete() with unknown kind should fail")
	}
}

func TestTaskManager_TodoDefaultsAndOrdering(t *testing.T) {
	m := newTestTaskManager(t)
	ctx := context.Background()

	for _, text := range []string{
		"add todo: water plants low priority",
		"add todo: write report #work",
		"add todo: fix outage urgent",
	} {
		if _, err := m.CreateTodoFromText(ctx, text); err != nil {
			t.Fatalf("CreateTodoFromText(%q) error = %v", text, err)
		}
	}

	todos, err := m.Todos(ctx, models.StatusPending)
	if err != nil {
		t.Fatalf("Todos() error = %v", err)
	}
	var priorities []models.Priority
	for _, td := range todos {
		priorities = append(priorities, td.Priority)
		if td.Category != DefaultTodoCategory {
			t.Errorf("Category = %q, want %q", td.Category, DefaultTodoCategory)
		}
	}
	want := []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow}
	if diff := cmp.Diff(want, priorities); diff != "" {
		t.Errorf("todo order mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskManager_Counts(t *testing.T) {
	m := newTestTaskManager(t)
	ctx := context.Background()

	r, _ := m.CreateReminderFromText(ctx, "remind me to stretch")
	_, _ = m.CreateReminderFromText(ctx, "remind me to drink water")
	_, _ = m.CreateTodoFromText(ctx, "add todo: ship release")
	_, _ = m.Complete(ctx, TaskRef{Kind: TaskKindReminder, ID: r.ID})

	counts, err := m.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	want := models.TaskCounts{PendingReminders: 1, CompletedReminders: 1, PendingTodos: 1}
	if counts != want {
		t.Errorf("Counts() = %+v, want %+v", counts, want)
	}
}

func TestFormatReminders(t *testing.T) {
	if got := FormatReminders(nil); !strings.Contains(got, "no reminders") {
		t.Errorf("FormatReminders(nil) = %q, want empty message", got)
	}

	out := FormatReminders([]models.Reminder{{
		ID: 2, Title: "call John", DueDate: "2026-10-16", DueTime: "15:00",
		Priority: models.PriorityHigh, Status: models.StatusPending,
	}})
	for _, want := range []string{"⏰ 🔴 **[2]** call John", "📅 Due: 2026-10-16 at 15:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatReminders() = %q, missing %q", out, want)
		}
	}
}

func TestFormatTodos(t *testing.T) {
	out := FormatTodos([]models.Todo{{
		ID: 5, Title: "write docs", Category: "dev", Tags: []string{"work", "docs"},
		Priority: models.PriorityLow, Status: models.StatusCompleted,
	}})
	for _, want := range []string{"☑️ 🟢 **[5]** write docs", "📂 Category: dev", "🏷️ Tags: work, docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatTodos() = %q, missing %q", out, want)
		}
	}
}

func TestFormatTaskSummary(t *testing.T) {
	out := FormatTaskSummary(models.TaskCounts{PendingReminders: 2, CompletedTodos: 1})
	for _, want := range []string{"Reminders: 2 pending, 0 completed", "Todos: 0 pending, 1 completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatTaskSummary() = %q, missing %q", out, want)
		}
	}
}
