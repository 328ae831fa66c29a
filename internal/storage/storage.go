// ABOUTME: Persistence contracts used by the conversational core
// ABOUTME: Implemented by the SQLite backend; preferences can also live in Charm KV
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/harper/yaan/internal/models"
)

// ErrNotFound is returned when a lookup that requires a value finds nothing
var ErrNotFound = errors.New("not found")

// PreferenceStore is a per-user key/value store holding JSON values
type PreferenceStore interface {
	// GetPreference decodes the stored value into dest and reports whether it existed
	GetPreference(ctx context.Context, userID, key string, dest any) (bool, error)
	SetPreference(ctx context.Context, userID, key string, value any) error
	// IncrementCounter atomically adds one to an integer preference and returns the new value
	IncrementCounter(ctx context.Context, userID, key string) (int, error)
	DeletePreferences(ctx context.Context, userID string, keys ...string) error
}

// ConversationLog is the append-only record of (input, response) pairs
type ConversationLog interface {
	AppendConversation(ctx context.Context, userID, input, response string) error
	RecentConversations(ctx context.Context, userID string, limit int) ([]models.Exchange, error)
	SearchConversations(ctx context.Context, userID, query string, limit int) ([]models.Exchange, error)
}

// TaskRepository persists reminders and todos.
// Complete and Delete report false instead of failing when the id does not exist.
type TaskRepository interface {
	CreateReminder(ctx context.Context, userID string, r *models.Reminder) (int64, error)
	ListReminders(ctx context.Context, userID string, status models.TaskStatus) ([]models.Reminder, error)
	CompleteReminder(ctx context.Context, userID string, id int64) (bool, error)
	DeleteReminder(ctx context.Context, userID string, id int64) (bool, error)

	CreateTodo(ctx context.Context, userID string, t *models.Todo) (int64, error)
	ListTodos(ctx context.Context, userID string, status models.TaskStatus) ([]models.Todo, error)
	CompleteTodo(ctx context.Context, userID string, id int64) (bool, error)
	DeleteTodo(ctx context.Context, userID string, id int64) (bool, error)
}

// QuestionLedger is the view of a user's question history inside one transaction
type QuestionLedger interface {
	Settings() (models.LearningSettings, error)
	SaveSettings(s models.LearningSettings) error
	AskedQuestions() (map[string]bool, error)
	CountAskedSince(since time.Time) (int, error)
	CountAnsweredByCategory() (map[string]int, error)
	AppendQuestion(category, question string, askedAt time.Time) (int64, error)
}

// QuestionRepository persists proactive questions and learning settings
type QuestionRepository interface {
	// UpdateQuestions runs fn in a single transaction; an error from fn rolls it back
	UpdateQuestions(ctx context.Context, userID string, fn func(QuestionLedger) error) error
	// RecordAnswer answers the latest unanswered question with exactly this text
	RecordAnswer(ctx context.Context, userID, question, answer string, answeredAt time.Time) (bool, error)
	CountAskedSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountAnsweredByCategory(ctx context.Context, userID string) (map[string]int, error)
	LearningSettings(ctx context.Context, userID string) (models.LearningSettings, error)
	SaveLearningSettings(ctx context.Context, userID string, s models.LearningSettings) error
	RecentQuestions(ctx context.Context, userID string, limit int) ([]models.AskedQuestion, error)
	QuestionStats(ctx context.Context, userID string) (models.QuestionStats, error)
	ResetQuestions(ctx context.Context, userID string) error
}

// Store is everything the dispatcher needs from persistence
type Store interface {
	PreferenceStore
	ConversationLog
	TaskRepository
	QuestionRepository
}
