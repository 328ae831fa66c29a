// ABOUTME: Proactive learning records: asked questions and per-user learning settings
// ABOUTME: AskedQuestion rows are created by the scheduler and answered at most once
package models

import "time"

// AskedQuestion is a proactive question that was surfaced to the user
type AskedQuestion struct {
	ID         int64      `json:"id" yaml:"id"`
	Category   string     `json:"category" yaml:"category"`
	Question   string     `json:"question" yaml:"question"`
	AskedAt    time.Time  `json:"asked_at" yaml:"asked_at"`
	Answered   bool       `json:"answered" yaml:"answered"`
	Answer     string     `json:"answer,omitempty" yaml:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty" yaml:"answered_at,omitempty"`
}

// LearningSettings controls the proactive question scheduler for one user
type LearningSettings struct {
	QuestionsEnabled          bool      `json:"questions_enabled"`
	QuestionsPerDay           int       `json:"questions_per_day"`
	MinMessagesBeforeQuestion int       `json:"min_messages_before_question"`
	LastQuestionTime          time.Time `json:"last_question_time"`
}

// DefaultLearningSettings returns the settings of a user who never changed them
func DefaultLearningSettings() LearningSettings {
	return LearningSettings{
		QuestionsEnabled:          true,
		QuestionsPerDay:           2,
		MinMessagesBeforeQuestion: 5,
		LastQuestionTime:          time.Unix(0, 0).UTC(),
	}
}

// CategoryStats counts asked and answered questions in one category
type CategoryStats struct {
	Asked    int `json:"asked"`
	Answered int `json:"answered"`
}

// QuestionStats aggregates the asked-question history of a user
type QuestionStats struct {
	TotalAsked    int                      `json:"total_asked"`
	TotalAnswered int                      `json:"total_answered"`
	ByCategory    map[string]CategoryStats `json:"by_category"`
}

// AnswerRate returns the percentage of asked questions that were answered
func (s QuestionStats) AnswerRate() float64 {
	if s.TotalAsked == 0 {
		return 0
	}
	return float64(s.TotalAnswered) / float64(s.TotalAsked) * 100
}
