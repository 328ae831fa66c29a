// ABOUTME: Conversation log storage operations for SQLite
// ABOUTME: Appends (input, response) exchanges and lists or searches them newest first
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/yaan/internal/models"
)

const defaultConversationLimit = 20

// ConversationStore handles conversation log persistence
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// AppendConversation records one exchange
func (s *ConversationStore) AppendConversation(ctx context.Context, userID, input, response string) error {
	exchange, err := models.NewExchange(userID, input, response)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (turn_id, user_id, user_input, assistant_response, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, exchange.TurnID, exchange.UserID, exchange.Input, exchange.Response, exchange.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append conversation: %w", err)
	}
	return nil
}

// RecentConversations returns the latest exchanges, newest first
func (s *ConversationStore) RecentConversations(ctx context.Context, userID string, limit int) ([]models.Exchange, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	return s.query(ctx, `
		SELECT turn_id, user_id, user_input, assistant_response, created_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, limit)
}

// SearchConversations returns exchanges whose input or response contains query, newest first
func (s *ConversationStore) SearchConversations(ctx context.Context, userID, query string, limit int) ([]models.Exchange, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.query(ctx, `
		SELECT turn_id, user_id, user_input, assistant_response, created_at
		FROM conversations
		WHERE user_id = ?
			AND (lower(user_input) LIKE ? ESCAPE '\' OR lower(assistant_response) LIKE ? ESCAPE '\')
		ORDER BY id DESC
		LIMIT ?
	`, userID, pattern, pattern, limit)
}

// CountConversations returns how many exchanges were logged for a user
func (s *ConversationStore) CountConversations(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}

func (s *ConversationStore) query(ctx context.Context, query string, args ...any) ([]models.Exchange, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var exchanges []models.Exchange
	for rows.Next() {
		var ex models.Exchange
		if err := rows.Scan(&ex.TurnID, &ex.UserID, &ex.Input, &ex.Response, &ex.Timestamp); err != nil {
			return nil, err
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

// escapeLike escapes LIKE wildcards so user text matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
