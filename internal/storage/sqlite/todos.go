// ABOUTME: Todo storage operations for SQLite
// ABOUTME: Tags live in their own table and are returned in insertion order
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
)

// TodoStore handles todo persistence
type TodoStore struct {
	db *DB
}

// NewTodoStore creates a new TodoStore
func NewTodoStore(db *DB) *TodoStore {
	return &TodoStore{db: db}
}

// CreateTodo inserts a pending todo with its tags and returns its id
func (s *TodoStore) CreateTodo(ctx context.Context, userID string, t *models.Todo) (int64, error) {
	if t.Title == "" {
		return 0, errors.New("todo title cannot be empty")
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Status = models.StatusPending
	t.CompletedAt = nil

	var id int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO todos (user_id, title, description, due_date, priority, status, category, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, userID, t.Title, nilIfEmpty(t.Description), nilIfEmpty(t.DueDate),
			string(t.Priority), string(t.Status), nilIfEmpty(t.Category), t.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert todo: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return err
		}

		for _, tag := range t.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO todo_tags (todo_id, tag) VALUES (?, ?)", id, tag); err != nil {
				return fmt.Errorf("failed to insert tag: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	t.ID = id
	return id, nil
}

// GetTodo returns one todo or storage.ErrNotFound
func (s *TodoStore) GetTodo(ctx context.Context, userID string, id int64) (*models.Todo, error) {
	todos, err := s.list(ctx, userID, " AND id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		return nil, storage.ErrNotFound
	}
	return &todos[0], nil
}

// ListTodos returns todos with the given status (or all) in display order
func (s *TodoStore) ListTodos(ctx context.Context, userID string, status models.TaskStatus) ([]models.Todo, error) {
	if status == "" || status == models.StatusAll {
		return s.list(ctx, userID, "")
	}
	return s.list(ctx, userID, " AND status = ?", string(status))
}

// CompleteTodo marks a todo completed; false when it does not exist
func (s *TodoStore) CompleteTodo(ctx context.Context, userID string, id int64) (bool, error) {
	return s.mutate(ctx, `
		UPDATE todos SET status = ?, completed_at = COALESCE(completed_at, ?)
		WHERE user_id = ? AND id = ?
	`, string(models.StatusCompleted), time.Now().UTC(), userID, id)
}

// DeleteTodo hard-deletes a todo and its tags; false when it does not exist
func (s *TodoStore) DeleteTodo(ctx context.Context, userID string, id int64) (bool, error) {
	return s.mutate(ctx, "DELETE FROM todos WHERE user_id = ? AND id = ?", userID, id)
}

func (s *TodoStore) mutate(ctx context.Context, query string, args ...any) (bool, error) {
	var affected int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *TodoStore) list(ctx context.Context, userID, filter string, args ...any) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, title, description, due_date, priority, status, category, created_at, completed_at
			FROM todos WHERE user_id = ?`+filter+taskOrder,
			append([]any{userID}, args...)...)
		if err != nil {
			return fmt.Errorf("failed to list todos: %w", err)
		}
		todos, err = scanTodos(rows)
		if err != nil {
			return err
		}
		if len(todos) == 0 {
			return nil
		}

		tags, err := loadTags(ctx, tx, userID)
		if err != nil {
			return err
		}
		for i := range todos {
			todos[i].Tags = tags[todos[i].ID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func scanTodos(rows *sql.Rows) ([]models.Todo, error) {
	defer func() { _ = rows.Close() }()

	var todos []models.Todo
	for rows.Next() {
		var (
			t           models.Todo
			description sql.NullString
			dueDate     sql.NullString
			category    sql.NullString
			priority    string
			status      string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Title, &description, &dueDate, &priority, &status,
			&category, &t.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		t.Description = description.String
		t.DueDate = dueDate.String
		t.Category = category.String
		t.Priority = models.Priority(priority)
		t.Status = models.TaskStatus(status)
		t.CompletedAt = timePtr(completedAt)
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// loadTags returns the tags of every todo owned by userID, keyed by todo id
func loadTags(ctx context.Context, tx *sql.Tx, userID string) (map[int64][]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT tt.todo_id, tt.tag
		FROM todo_tags tt
		JOIN todos t ON t.id = tt.todo_id
		WHERE t.user_id = ?
		ORDER BY tt.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tags := make(map[int64][]string)
	for rows.Next() {
		var (
			todoID int64
			tag    string
		)
		if err := rows.Scan(&todoID, &tag); err != nil {
			return nil, err
		}
		tags[todoID] = append(tags[todoID], tag)
	}
	return tags, rows.Err()
}
