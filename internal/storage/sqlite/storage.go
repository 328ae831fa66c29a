// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Satisfies storage.Store for the dispatcher, MCP server and CLI
package sqlite

import (
	"context"
	"fmt"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
)

// Storage manages all persistent assistant data using SQLite
type Storage struct {
	*PreferenceStore
	*ConversationStore
	*ReminderStore
	*TodoStore
	*QuestionStore

	db *DB
}

var _ storage.Store = (*Storage)(nil)

// NewStorage initializes storage at the default database path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		PreferenceStore:   NewPreferenceStore(db),
		ConversationStore: NewConversationStore(db),
		ReminderStore:     NewReminderStore(db),
		TodoStore:         NewTodoStore(db),
		QuestionStore:     NewQuestionStore(db),
		db:                db,
	}
}

// DB returns the underlying database handle
func (s *Storage) DB() *DB {
	return s.db
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// TaskCounts counts reminders and todos by status
func (s *Storage) TaskCounts(ctx context.Context, userID string) (models.TaskCounts, error) {
	var counts models.TaskCounts
	rows, err := s.db.QueryContext(ctx, `
		SELECT 'reminder', status, COUNT(*) FROM reminders WHERE user_id = ? GROUP BY status
		UNION ALL
		SELECT 'todo', status, COUNT(*) FROM todos WHERE user_id = ? GROUP BY status
	`, userID, userID)
	if err != nil {
		return counts, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			kind   string
			status string
			n      int
		)
		if err := rows.Scan(&kind, &status, &n); err != nil {
			return counts, err
		}
		switch {
		case kind == "reminder" && status == string(models.StatusPending):
			counts.PendingReminders = n
		case kind == "reminder" && status == string(models.StatusCompleted):
			counts.CompletedReminders = n
		case kind == "todo" && status == string(models.StatusPending):
			counts.PendingTodos = n
		case kind == "todo" && status == string(models.StatusCompleted):
			counts.CompletedTodos = n
		}
	}
	return counts, rows.Err()
}
