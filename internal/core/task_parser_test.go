// ABOUTME: Tests for reminder and todo text parsing
// ABOUTME: Covers priority, relative dates, clock normalization, tags and titles
package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harper/yaan/internal/models"
)

var parseNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func TestParseReminder_Example(t *testing.T) {
	r, err := ParseReminder("remind me to call John tomorrow at 3pm", parseNow)
	if err != nil {
		t.Fatalf("ParseReminder() error = %v", err)
	}

	want := &models.Reminder{
		Title:    "call John",
		DueDate:  "2026-10-16",
		DueTime:  "15:00",
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("ParseReminder() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReminder_Fallback(t *testing.T) {
	r, err := ParseReminder("remind me at 9am standup", parseNow)
	if err != nil {
		t.Fatalf("ParseReminder() error = %v", err)
	}
	if r.Title != "at 9am standup" {
		t.Errorf("Title = %q, want %q", r.Title, "at 9am standup")
	}
	if r.DueTime != "09:00" {
		t.Errorf("DueTime = %q, want 09:00", r.DueTime)
	}
}

func TestParseReminder_NoTitle(t *testing.T) {
	_, err := ParseReminder("set a reminder", parseNow)
	if !errors.Is(err, ErrNoTitle) {
		t.Errorf("ParseReminder() error = %v, want ErrNoTitle", err)
	}
}

func TestParseReminder_TitleKeepsWordsContainingKeywords(t *testing.T) {
	r, err := ParseReminder("remind me to buy onions today", parseNow)
	if err != nil {
		t.Fatalf("ParseReminder() error = %v", err)
	}
	if r.Title != "buy onions" {
		t.Errorf("Title = %q, want %q", r.Title, "buy onions")
	}
	if r.DueDate != "2026-10-15" {
		t.Errorf("DueDate = %q, want 2026-10-15", r.DueDate)
	}
}

func TestParseTodo_Example(t *testing.T) {
	todo, err := ParseTodo("add todo: finish project documentation #work")
	if err != nil {
		t.Fatalf("ParseTodo() error = %v", err)
	}

	want := &models.Todo{
		Title:    "finish project documentation",
		Tags:     []string{"work"},
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
	}
	if diff := cmp.Diff(want, todo); diff != "" {
		t.Errorf("ParseTodo() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTodo_CategoryAndTags(t *testing.T) {
	todo, err := ParseTodo("create task: review code #work #review #work category: dev")
	if err != nil {
		t.Fatalf("ParseTodo() error = %v", err)
	}
	if todo.Title != "review code" {
		t.Errorf("Title = %q, want %q", todo.Title, "review code")
	}
	if todo.Category != "dev" {
		t.Errorf("Category = %q, want dev", todo.Category)
	}
	if diff := cmp.Diff([]string{"work", "review", "work"}, todo.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTodo_NoTitle(t *testing.T) {
	_, err := ParseTodo("add a todo")
	if !errors.Is(err, ErrNoTitle) {
		t.Errorf("ParseTodo() error = %v, want ErrNoTitle", err)
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		text string
		want models.Priority
	}{
		{"call mom", models.PriorityMedium},
		{"this is urgent", models.PriorityHigh},
		{"Important meeting", models.PriorityHigh},
		{"high priority fix", models.PriorityHigh},
		{"low priority cleanup", models.PriorityLow},
		// high is checked before low
		{"high priority but also low priority", models.PriorityHigh},
		{"not urgent", models.PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParsePriority(tt.text); got != tt.want {
				t.Errorf("ParsePriority(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseRelativeDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"tomorrow", "2026-10-16"},
		{"later today", "2026-10-15"},
		{"next week", "2026-10-22"},
		{"tomorrow or next week", "2026-10-16"},
		{"someday", ""},
	}

	for _, tt := range tests {
		if got := ParseRelativeDate(tt.text, parseNow); got != tt.want {
			t.Errorf("ParseRelativeDate(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"at 3pm", "15:00"},
		{"at 3:30 pm", "15:30"},
		{"at 12pm", "12:00"},
		{"at 12am", "00:00"},
		{"at 12:15am", "00:15"},
		{"at 9", "09:00"},
		{"at 17:45", "17:45"},
		{"no time here", ""},
		{"at 99pm", ""},
		{"at 3:75", ""},
		{"at 24:00", ""},
		{"at 23:59", "23:59"},
	}

	for _, tt := range tests {
		if got := ParseClockTime(tt.text); got != tt.want {
			t.Errorf("ParseClockTime(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
