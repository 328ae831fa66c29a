// ABOUTME: Per-user preference storage operations for SQLite
// ABOUTME: Values are JSON-encoded; counters are incremented inside a transaction
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PreferenceStore handles preference persistence
type PreferenceStore struct {
	db *DB
}

// NewPreferenceStore creates a new PreferenceStore
func NewPreferenceStore(db *DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// GetPreference decodes the stored value for key into dest.
// It reports false, leaving dest untouched, when the key has never been set.
func (s *PreferenceStore) GetPreference(ctx context.Context, userID, key string, dest any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM preferences WHERE user_id = ? AND key = ?
	`, userID, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode preference %s: %w", key, err)
	}
	return true, nil
}

// SetPreference stores value as JSON under key (upsert)
func (s *PreferenceStore) SetPreference(ctx context.Context, userID, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference %s: %w", key, err)
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return upsertPreference(ctx, tx, userID, key, string(encoded))
	})
}

// IncrementCounter adds one to an integer preference and returns the new value
func (s *PreferenceStore) IncrementCounter(ctx context.Context, userID, key string) (int, error) {
	var next int
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx, `
			SELECT value FROM preferences WHERE user_id = ? AND key = ?
		`, userID, key).Scan(&raw)

		current := 0
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read counter %s: %w", key, err)
		default:
			current, err = strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("counter %s is not an integer: %w", key, err)
			}
		}

		next = current + 1
		return upsertPreference(ctx, tx, userID, key, strconv.Itoa(next))
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// DeletePreferences removes the given keys for a user
func (s *PreferenceStore) DeletePreferences(ctx context.Context, userID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM preferences WHERE user_id = ? AND key = ?", userID, key); err != nil {
				return fmt.Errorf("failed to delete preference %s: %w", key, err)
			}
		}
		return nil
	})
}

// ListPreferences returns every raw JSON value stored for a user, keyed by name
func (s *PreferenceStore) ListPreferences(ctx context.Context, userID string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM preferences WHERE user_id = ? ORDER BY key
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	prefs := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		prefs[key] = json.RawMessage(value)
	}
	return prefs, rows.Err()
}

func upsertPreference(ctx context.Context, tx *sql.Tx, userID, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO preferences (user_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, userID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}
