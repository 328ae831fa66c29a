// ABOUTME: Proactive question and learning settings storage for SQLite
// ABOUTME: UpdateQuestions exposes a transactional ledger so select-and-record is atomic
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

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QuestionStore handles asked-question and learning-settings persistence
type QuestionStore struct {
	db *DB
}

// NewQuestionStore creates a new QuestionStore
func NewQuestionStore(db *DB) *QuestionStore {
	return &QuestionStore{db: db}
}

// UpdateQuestions runs fn against a ledger bound to one transaction
func (s *QuestionStore) UpdateQuestions(ctx context.Context, userID string, fn func(storage.QuestionLedger) error) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&ledger{ctx: ctx, q: tx, userID: userID})
	})
}

// RecordAnswer answers the most recent unanswered question whose text matches exactly.
// It reports false when there is nothing to answer.
func (s *QuestionStore) RecordAnswer(ctx context.Context, userID, question, answer string, answeredAt time.Time) (bool, error) {
	var affected int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE asked_questions
			SET answered = 1, answer = ?, answered_at = ?
			WHERE id = (
				SELECT id FROM asked_questions
				WHERE user_id = ? AND question = ? AND answered = 0
				ORDER BY asked_at DESC, id DESC
				LIMIT 1
			)
		`, answer, answeredAt.UTC(), userID, question)
		if err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountAskedSince counts questions asked at or after since
func (s *QuestionStore) CountAskedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return s.view(userID).withContext(ctx).CountAskedSince(since)
}

// CountAnsweredByCategory counts answered questions per category
func (s *QuestionStore) CountAnsweredByCategory(ctx context.Context, userID string) (map[string]int, error) {
	return s.view(userID).withContext(ctx).CountAnsweredByCategory()
}

// LearningSettings returns the stored settings or the defaults
func (s *QuestionStore) LearningSettings(ctx context.Context, userID string) (models.LearningSettings, error) {
	return s.view(userID).withContext(ctx).Settings()
}

// SaveLearningSettings stores settings for a user (upsert)
func (s *QuestionStore) SaveLearningSettings(ctx context.Context, userID string, settings models.LearningSettings) error {
	return s.UpdateQuestions(ctx, userID, func(l storage.QuestionLedger) error {
		return l.SaveSettings(settings)
	})
}

// RecentQuestions returns the latest asked questions, newest first
func (s *QuestionStore) RecentQuestions(ctx context.Context, userID string, limit int) ([]models.AskedQuestion, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, question, asked_at, answered, answer, answered_at
		FROM asked_questions
		WHERE user_id = ?
		ORDER BY asked_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []models.AskedQuestion
	for rows.Next() {
		var (
			q          models.AskedQuestion
			answer     sql.NullString
			answeredAt sql.NullTime
		)
		if err := rows.Scan(&q.ID, &q.Category, &q.Question, &q.AskedAt, &q.Answered, &answer, &answeredAt); err != nil {
			return nil, err
		}
		q.Answer = answer.String
		q.AnsweredAt = timePtr(answeredAt)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// QuestionStats aggregates asked and answered counts overall and per category
func (s *QuestionStore) QuestionStats(ctx context.Context, userID string) (models.QuestionStats, error) {
	stats := models.QuestionStats{ByCategory: make(map[string]models.CategoryStats)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(CASE WHEN answered THEN 1 ELSE 0 END), 0)
		FROM asked_questions
		WHERE user_id = ?
		GROUP BY category
		ORDER BY category
	`, userID)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			category string
			cs       models.CategoryStats
		)
		if err := rows.Scan(&category, &cs.Asked, &cs.Answered); err != nil {
			return stats, err
		}
		stats.ByCategory[category] = cs
		stats.TotalAsked += cs.Asked
		stats.TotalAnswered += cs.Answered
	}
	return stats, rows.Err()
}

// ResetQuestions forgets every asked question and restores default settings
func (s *QuestionStore) ResetQuestions(ctx context.Context, userID string) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM asked_questions WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM learning_settings WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete learning settings: %w", err)
		}
		return nil
	})
}

func (s *QuestionStore) view(userID string) *ledger {
	return &ledger{q: s.db.Conn(), userID: userID}
}

// ledger implements storage.QuestionLedger over a database handle or transaction
type ledger struct {
	ctx    context.Context
	q      querier
	userID string
}

var _ storage.QuestionLedger = (*ledger)(nil)

func (l *ledger) withContext(ctx context.Context) *ledger {
	l.ctx = ctx
	return l
}

func (l *ledger) Settings() (models.LearningSettings, error) {
	settings := models.DefaultLearningSettings()
	err := l.q.QueryRowContext(l.ctx, `
		SELECT questions_enabled, questions_per_day, min_messages_before_question, last_question_time
		FROM learning_settings WHERE user_id = ?
	`, l.userID).Scan(&settings.QuestionsEnabled, &settings.QuestionsPerDay,
		&settings.MinMessagesBeforeQuestion, &settings.LastQuestionTime)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultLearningSettings(), nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to get learning settings: %w", err)
	}
	return settings, nil
}

func (l *ledger) SaveSettings(settings models.LearningSettings) error {
	_, err := l.q.ExecContext(l.ctx, `
		INSERT INTO learning_settings (user_id, questions_enabled, questions_per_day, min_messages_before_question, last_question_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			questions_enabled = excluded.questions_enabled,
			questions_per_day = excluded.questions_per_day,
			min_messages_before_question = excluded.min_messages_before_question,
			last_question_time = excluded.last_question_time
	`, l.userID, settings.QuestionsEnabled, settings.QuestionsPerDay,
		settings.MinMessagesBeforeQuestion, settings.LastQuestionTime.UTC())
	if err != nil {
		return fmt.Errorf("failed to save learning settings: %w", err)
	}
	return nil
}

func (l *ledger) AskedQuestions() (map[string]bool, error) {
	rows, err := l.q.QueryContext(l.ctx,
		"SELECT DISTINCT question FROM asked_questions WHERE user_id = ?", l.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list asked questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	asked := make(map[string]bool)
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		asked[q] = true
	}
	return asked, rows.Err()
}

func (l *ledger) CountAskedSince(since time.Time) (int, error) {
	var count int
	err := l.q.QueryRowContext(l.ctx, `
		SELECT COUNT(*) FROM asked_questions WHERE user_id = ? AND asked_at >= ?
	`, l.userID, since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count asked questions: %w", err)
	}
	return count, nil
}

func (l *ledger) CountAnsweredByCategory() (map[string]int, error) {
	rows, err := l.q.QueryContext(l.ctx, `
		SELECT category, COUNT(*) FROM asked_questions
		WHERE user_id = ? AND answered = 1
		GROUP BY category
	`, l.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answered questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

func (l *ledger) AppendQuestion(category, question string, askedAt time.Time) (int64, error) {
	result, err := l.q.ExecContext(l.ctx, `
		INSERT INTO asked_questions (user_id, category, question, asked_at, answered)
		VALUES (?, ?, ?, ?, 0)
	`, l.userID, category, question, askedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to record question: %w", err)
	}
	return result.LastInsertId()
}
