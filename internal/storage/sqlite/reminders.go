// ABOUTME: Reminder storage operations for SQLite
// ABOUTME: Lists are ordered by priority, then due date with undated reminders last
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
)

// ReminderStore handles reminder persistence
type ReminderStore struct {
	db *DB
}

// NewReminderStore creates a new ReminderStore
func NewReminderStore(db *DB) *ReminderStore {
	return &ReminderStore{db: db}
}

// CreateReminder inserts a pending reminder and returns its id
func (s *ReminderStore) CreateReminder(ctx context.Context, userID string, r *models.Reminder) (int64, error) {
	if r.Title == "" {
		return 0, errors.New("reminder title cannot be empty")
	}
	if r.Priority == "" {
		r.Priority = models.PriorityMedium
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.Status = models.StatusPending
	r.CompletedAt = nil

	var id int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO reminders (user_id, title, description, due_date, due_time, priority, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, userID, r.Title, nilIfEmpty(r.Description), nilIfEmpty(r.DueDate), nilIfEmpty(r.DueTime),
			string(r.Priority), string(r.Status), r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reminder: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	r.ID = id
	return id, nil
}

// GetReminder returns one reminder or storage.ErrNotFound
func (s *ReminderStore) GetReminder(ctx context.Context, userID string, id int64) (*models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, reminderColumns+`
		FROM reminders WHERE user_id = ? AND id = ?
	`, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	reminders, err := scanReminders(rows)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return nil, storage.ErrNotFound
	}
	return &reminders[0], nil
}

// ListReminders returns reminders with the given status (or all) in display order
func (s *ReminderStore) ListReminders(ctx context.Context, userID string, status models.TaskStatus) ([]models.Reminder, error) {
	query := reminderColumns + " FROM reminders WHERE user_id = ?"
	args := []any{userID}
	if status != "" && status != models.StatusAll {
		query += " AND status = ?"
		args = append(args, string(status))
	}

	rows, err := s.db.QueryContext(ctx, query+taskOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return scanReminders(rows)
}

// CompleteReminder marks a reminder completed; false when it does not exist.
// Completing twice keeps the first completion time.
func (s *ReminderStore) CompleteReminder(ctx context.Context, userID string, id int64) (bool, error) {
	return s.mutate(ctx, `
		UPDATE reminders SET status = ?, completed_at = COALESCE(completed_at, ?)
		WHERE user_id = ? AND id = ?
	`, string(models.StatusCompleted), time.Now().UTC(), userID, id)
}

// DeleteReminder hard-deletes a reminder; false when it does not exist
func (s *ReminderStore) DeleteReminder(ctx context.Context, userID string, id int64) (bool, error) {
	return s.mutate(ctx, "DELETE FROM reminders WHERE user_id = ? AND id = ?", userID, id)
}

func (s *ReminderStore) mutate(ctx context.Context, query string, args ...any) (bool, error) {
	var affected int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update reminder: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const reminderColumns = `
	SELECT id, title, description, due_date, due_time, priority, status, created_at, completed_at`

func scanReminders(rows *sql.Rows) ([]models.Reminder, error) {
	defer func() { _ = rows.Close() }()

	var reminders []models.Reminder
	for rows.Next() {
		var (
			r           models.Reminder
			description sql.NullString
			dueDate     sql.NullString
			dueTime     sql.NullString
			priority    string
			status      string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Title, &description, &dueDate, &dueTime,
			&priority, &status, &r.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		r.Description = description.String
		r.DueDate = dueDate.String
		r.DueTime = dueTime.String
		r.Priority = models.Priority(priority)
		r.Status = models.TaskStatus(status)
		r.CompletedAt = timePtr(completedAt)
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
