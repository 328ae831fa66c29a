// ABOUTME: Reminder and Todo records managed by the task store
// ABOUTME: Defines priority ordering and the pending/completed lifecycle
package models

import "time"

// Priority ranks reminders and todos; high sorts first
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort position of a priority (high=1, medium=2, low=3)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Marker returns the colored marker shown next to a task of this priority
func (p Priority) Marker() string {
	switch p {
	case PriorityHigh:
		return "🔴"
	case PriorityMedium:
		return "🟡"
	case PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// ParsePriority maps free text to a Priority, defaulting to medium
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// TaskStatus is the lifecycle state of a reminder or todo.
// pending -> completed is one-way.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	// StatusAll is a list filter, never stored
	StatusAll TaskStatus = "all"
)

// Reminder is a dated task
type Reminder struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	DueDate     string     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	DueTime     string     `json:"due_time,omitempty" yaml:"due_time,omitempty"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Status      TaskStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Todo is an undated-by-default task with a category and tags
type Todo struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	DueDate     string     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// TaskCounts summarizes reminders and todos by status
type TaskCounts struct {
	PendingReminders   int `json:"pending_reminders"`
	CompletedReminders int `json:"completed_reminders"`
	PendingTodos       int `json:"pending_todos"`
	CompletedTodos     int `json:"completed_todos"`
}
