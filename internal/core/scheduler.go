// ABOUTME: QuestionScheduler decides when to ask a proactive learning question and which one
// ABOUTME: Gate, selection and recording run through one storage transaction per ask
package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
	"go.uber.org/zap"
)

// RandomSource is the randomness the core draws from; *rand.Rand satisfies it
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// pick returns a random element of options, or the first one without a source
func pick(rng RandomSource, options []string) string {
	if len(options) == 0 {
		return ""
	}
	if rng == nil {
		return options[0]
	}
	return options[rng.IntN(len(options))]
}

// QuestionCategory groups the questions asked about one area of the user's life
type QuestionCategory struct {
	Name      string
	Questions []string
}

// DefaultQuestionCategories in declaration order; order breaks selection ties
var DefaultQuestionCategories = []QuestionCategory{
	{Name: "personal", Questions: []string{
		"What do you do for work?",
		"What are your hobbies or interests?",
		"What programming languages do you work with most?",
		"What's your favorite type of project to work on?",
		"What tools do you use daily?",
	}},
	{Name: "preferences", Questions: []string{
		"Do you prefer detailed explanations or concise answers?",
		"What time of day do you usually work on coding projects?",
		"How would you like me to format code explanations?",
		"Would you like me to be more formal or casual?",
		"Do you prefer emojis in responses or plain text?",
	}},
	{Name: "goals", Questions: []string{
		"What are you currently learning or working towards?",
		"What skills would you like to improve?",
		"Are there any topics you'd like me to help you with regularly?",
		"What's your biggest challenge right now?",
		"What would make me more helpful to you?",
	}},
	{Name: "workflow", Questions: []string{
		"What's your typical daily routine?",
		"When do you prefer to receive reminders?",
		"How do you organize your tasks?",
		"What helps you stay productive?",
		"Do you have any regular meetings or commitments?",
	}},
	{Name: "feedback", Questions: []string{
		"How am I doing so far?",
		"Is there anything I should do differently?",
		"What features do you use most?",
		"What would you like me to improve?",
		"Am I asking too many questions?",
	}},
}

const (
	defaultQuestionInterval = 5 * time.Minute
	defaultAskProbability   = 0.3
	questionWindow          = 24 * time.Hour
)

// Question is a proactive question that has just been recorded as asked
type Question struct {
	ID       int64
	Category string
	Text     string
}

// Formatted is the text appended to the assistant's reply
func (q *Question) Formatted() string {
	return "💭 By the way, I'm curious: " + q.Text
}

// LearningSummary is the progress report of the proactive learner
type LearningSummary struct {
	Stats      models.QuestionStats
	AskedToday int
	MaxPerDay  int
	Enabled    bool
	Recent     []models.AskedQuestion
}

// QuestionScheduler owns the proactive question policy for one user
type QuestionScheduler struct {
	repo        storage.QuestionRepository
	userID      string
	rng         RandomSource
	now         func() time.Time
	interval    time.Duration
	probability float64
	categories  []QuestionCategory
	logger      *zap.Logger
}

// SchedulerOption customizes a QuestionScheduler
type SchedulerOption func(*QuestionScheduler)

// WithClock replaces time.Now
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *QuestionScheduler) { s.now = now }
}

// WithInterval sets the minimum time between two questions
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *QuestionScheduler) { s.interval = d }
}

// WithAskProbability sets the chance of asking once the gate is open
func WithAskProbability(p float64) SchedulerOption {
	return func(s *QuestionScheduler) { s.probability = p }
}

// WithCategories replaces the question catalogue
func WithCategories(c []QuestionCategory) SchedulerOption {
	return func(s *QuestionScheduler) { s.categories = c }
}

// NewQuestionScheduler creates a scheduler; a nil logger discards output
func NewQuestionScheduler(repo storage.QuestionRepository, userID string, rng RandomSource, logger *zap.Logger, opts ...SchedulerOption) *QuestionScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &QuestionScheduler{
		repo:        repo,
		userID:      userID,
		rng:         rng,
		now:         time.Now,
		interval:    defaultQuestionInterval,
		probability: defaultAskProbability,
		categories:  DefaultQuestionCategories,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// eligible applies the gate: enabled, enough messages, spaced out, under the daily limit
func (s *QuestionScheduler) eligible(settings models.LearningSettings, messageCount, askedInWindow int, now time.Time) bool {
	if !settings.QuestionsEnabled {
		return false
	}
	if messageCount < settings.MinMessagesBeforeQuestion {
		return false
	}
	if now.Sub(settings.LastQuestionTime) < s.interval {
		return false
	}
	return askedInWindow < settings.QuestionsPerDay
}

// MaybeAsk returns a newly recorded question, or nil when none should be asked now
func (s *QuestionScheduler) MaybeAsk(ctx context.Context, messageCount int) (*Question, error) {
	now := s.now()

	settings, err := s.repo.LearningSettings(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning settings: %w", err)
	}
	asked, err := s.repo.CountAskedSince(ctx, s.userID, now.Add(-questionWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent questions: %w", err)
	}
	if !s.eligible(settings, messageCount, asked, now) {
		return nil, nil
	}

	if s.rng == nil || s.rng.Float64() >= s.probability {
		return nil, nil
	}

	var q *Question
	err = s.repo.UpdateQuestions(ctx, s.userID, func(l storage.QuestionLedger) error {
		// a retried transaction starts over
		q = nil

		// another session may have asked since the gate was checked
		settings, err := l.Settings()
		if err != nil {
			return err
		}
		asked, err := l.CountAskedSince(now.Add(-questionWindow))
		if err != nil {
			return err
		}
		if !s.eligible(settings, messageCount, asked, now) {
			return nil
		}

		category, text, err := s.selectQuestion(l)
		if err != nil || text == "" {
			return err
		}

		id, err := l.AppendQuestion(category, text, now)
		if err != nil {
			return err
		}
		settings.LastQuestionTime = now
		if err := l.SaveSettings(settings); err != nil {
			return err
		}
		q = &Question{ID: id, Category: category, Text: text}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record question: %w", err)
	}

	if q != nil {
		s.logger.Info("asking proactive question",
			zap.String("category", q.Category),
			zap.String("question", q.Text))
	}
	return q, nil
}

// selectQuestion picks the least-answered category, falling back to the first category with anything left
func (s *QuestionScheduler) selectQuestion(l storage.QuestionLedger) (string, string, error) {
	if len(s.categories) == 0 {
		return "", "", nil
	}

	asked, err := l.AskedQuestions()
	if err != nil {
		return "", "", err
	}
	answered, err := l.CountAnsweredByCategory()
	if err != nil {
		return "", "", err
	}

	best := 0
	for i, c := range s.categories {
		if answered[c.Name] < answered[s.categories[best].Name] {
			best = i
		}
	}

	candidates := []QuestionCategory{s.categories[best]}
	candidates = append(candidates, s.categories...)
	for _, c := range candidates {
		var available []string
		for _, q := range c.Questions {
			if !asked[q] {
				available = append(available, q)
			}
		}
		if len(available) > 0 {
			return c.Name, pick(s.rng, available), nil
		}
	}
	return "", "", nil
}

// RecordAnswer stores answer against the pending question with exactly this text
func (s *QuestionScheduler) RecordAnswer(ctx context.Context, question, answer string) (bool, error) {
	ok, err := s.repo.RecordAnswer(ctx, s.userID, question, answer, s.now())
	if err != nil {
		return false, fmt.Errorf("failed to record answer: %w", err)
	}
	if ok {
		s.logger.Info("recorded answer", zap.String("question", question))
	}
	return ok, nil
}

// Toggle enables or disables questions; a nil enabled flips the current state.
// It returns the new state.
func (s *QuestionScheduler) Toggle(ctx context.Context, enabled *bool) (bool, error) {
	var state bool
	err := s.repo.UpdateQuestions(ctx, s.userID, func(l storage.QuestionLedger) error {
		settings, err := l.Settings()
		if err != nil {
			return err
		}
		if enabled == nil {
			settings.QuestionsEnabled = !settings.QuestionsEnabled
		} else {
			settings.QuestionsEnabled = *enabled
		}
		state = settings.QuestionsEnabled
		return l.SaveSettings(settings)
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle questions: %w", err)
	}
	s.logger.Info("proactive questions toggled", zap.Bool("enabled", state))
	return state, nil
}

// SetQuestionsPerDay changes the daily question limit
func (s *QuestionScheduler) SetQuestionsPerDay(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("questions per day must not be negative, got %d", n)
	}
	return s.updateSettings(ctx, func(ls *models.LearningSettings) { ls.QuestionsPerDay = n })
}

// SetMinMessages changes how many messages a session needs before the first question
func (s *QuestionScheduler) SetMinMessages(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("min messages must not be negative, got %d", n)
	}
	return s.updateSettings(ctx, func(ls *models.LearningSettings) { ls.MinMessagesBeforeQuestion = n })
}

func (s *QuestionScheduler) updateSettings(ctx context.Context, fn func(*models.LearningSettings)) error {
	err := s.repo.UpdateQuestions(ctx, s.userID, func(l storage.QuestionLedger) error {
		settings, err := l.Settings()
		if err != nil {
			return err
		}
		fn(&settings)
		return l.SaveSettings(settings)
	})
	if err != nil {
		return fmt.Errorf("failed to update learning settings: %w", err)
	}
	return nil
}

// Categories returns the question catalogue in declaration order
func (s *QuestionScheduler) Categories() []QuestionCategory {
	return s.categories
}

// Settings returns the current learning settings
func (s *QuestionScheduler) Settings(ctx context.Context) (models.LearningSettings, error) {
	return s.repo.LearningSettings(ctx, s.userID)
}

// Reset forgets every asked question and restores default settings
func (s *QuestionScheduler) Reset(ctx context.Context) error {
	if err := s.repo.ResetQuestions(ctx, s.userID); err != nil {
		return fmt.Errorf("failed to reset questions: %w", err)
	}
	s.logger.Info("proactive questions reset", zap.String("user", s.userID))
	return nil
}

// Summary gathers learning progress
func (s *QuestionScheduler) Summary(ctx context.Context, recent int) (LearningSummary, error) {
	var sum LearningSummary

	stats, err := s.repo.QuestionStats(ctx, s.userID)
	if err != nil {
		return sum, fmt.Errorf("failed to get question stats: %w", err)
	}
	settings, err := s.repo.LearningSettings(ctx, s.userID)
	if err != nil {
		return sum, fmt.Errorf("failed to get learning settings: %w", err)
	}
	today, err := s.repo.CountAskedSince(ctx, s.userID, s.now().Add(-questionWindow))
	if err != nil {
		return sum, fmt.Errorf("failed to count recent questions: %w", err)
	}
	latest, err := s.repo.RecentQuestions(ctx, s.userID, recent)
	if err != nil {
		return sum, fmt.Errorf("failed to list recent questions: %w", err)
	}

	sum.Stats = stats
	sum.AskedToday = today
	sum.MaxPerDay = settings.QuestionsPerDay
	sum.Enabled = settings.QuestionsEnabled
	sum.Recent = latest
	return sum, nil
}

// FormatLearningSummary renders a LearningSummary for chat, listing categories in catalogue order
func FormatLearningSummary(sum LearningSummary, categories []QuestionCategory) string {
	var b strings.Builder
	b.WriteString("📊 **Learning Summary**\n\n")
	fmt.Fprintf(&b, "**Questions Asked:** %d\n", sum.Stats.TotalAsked)
	fmt.Fprintf(&b, "**Questions Answered:** %d\n", sum.Stats.TotalAnswered)
	fmt.Fprintf(&b, "**Today's Questions:** %d/%d\n", sum.AskedToday, sum.MaxPerDay)
	if !sum.Enabled {
		b.WriteString("**Status:** questions are off\n")
	}

	if len(sum.Stats.ByCategory) > 0 {
		b.WriteString("\n**By Category:**\n")
		seen := make(map[string]bool)
		for _, c := range categories {
			if cs, ok := sum.Stats.ByCategory[c.Name]; ok {
				seen[c.Name] = true
				fmt.Fprintf(&b, "- %s: %d asked, %d answered\n", capitalize(c.Name), cs.Asked, cs.Answered)
			}
		}
		var extra []string
		for name := range sum.Stats.ByCategory {
			if !seen[name] {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			cs := sum.Stats.ByCategory[name]
			fmt.Fprintf(&b, "- %s: %d asked, %d answered\n", capitalize(name), cs.Asked, cs.Answered)
		}
	}

	if len(sum.Recent) > 0 {
		b.WriteString("\n**Recent Questions:**\n")
		for i, q := range sum.Recent {
			status := "⏸️ Pending"
			if q.Answered {
				status = "✅ Answered"
			}
			fmt.Fprintf(&b, "%d. [%s] %s - %s\n", i+1, q.Category, q.Question, status)
		}
	}
	return b.String()
}
