// ABOUTME: Dispatcher runs one conversation turn: learn, answer from memory or intent, maybe ask
// ABOUTME: Owns the rolling history and the pending proactive question of a session
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is how many turns the dispatcher keeps for context
const DefaultHistoryLimit = 20

const apology = "I'm sorry, something went wrong while handling that. Please try again."

// Responder produces a reply for messages no intent matched
type Responder interface {
	Respond(ctx context.Context, history []models.ConversationTurn, message string) (string, error)
}

// Dispatcher is the entry point of the assistant for one user session
type Dispatcher struct {
	log       storage.ConversationLog
	memory    *UserMemory
	scheduler *QuestionScheduler
	tasks     *TaskManager
	coding    *CodingAssistant
	responder Responder
	rng       RandomSource
	now       func() time.Time
	logger    *zap.Logger

	userID       string
	userName     string
	historyLimit int

	history      []models.ConversationTurn
	lastIntent   Intent
	messageCount int
	pending      *Question
}

// every taxonomy intent needs a Dispatcher method
var _ Handlers = (*Dispatcher)(nil)

// DispatcherConfig wires the components a Dispatcher drives
type DispatcherConfig struct {
	UserID       string
	UserName     string
	HistoryLimit int

	Log       storage.ConversationLog
	Memory    *UserMemory
	Scheduler *QuestionScheduler
	Tasks     *TaskManager
	// Responder is optional; without it unmatched messages get a keyword reply
	Responder Responder

	Random RandomSource
	Now    func() time.Time
	Logger *zap.Logger
}

// NewDispatcher creates a Dispatcher from already constructed components
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	return &Dispatcher{
		log:          cfg.Log,
		memory:       cfg.Memory,
		scheduler:    cfg.Scheduler,
		tasks:        cfg.Tasks,
		coding:       NewCodingAssistant(),
		responder:    cfg.Responder,
		rng:          cfg.Random,
		now:          cfg.Now,
		logger:       cfg.Logger,
		userID:       cfg.UserID,
		userName:     cfg.UserName,
		historyLimit: cfg.HistoryLimit,
	}
}

// AssistantOptions tunes NewAssistant
type AssistantOptions struct {
	UserID       string
	UserName     string
	HistoryLimit int
	Random       RandomSource
	Now          func() time.Time
	Responder    Responder
	Logger       *zap.Logger
	// Scheduler options apply after the clock; zero values are kept as given
	Scheduler []SchedulerOption
}

// NewAssistant loads the user's memory and builds a Dispatcher over store.
// prefs may point the user model at a different preference backend; nil uses store.
func NewAssistant(ctx context.Context, store storage.Store, prefs storage.PreferenceStore, opts AssistantOptions) (*Dispatcher, error) {
	if opts.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if prefs == nil {
		prefs = store
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	memory, err := NewUserMemory(ctx, prefs, opts.UserID, opts.Random, opts.Logger.Named("memory"))
	if err != nil {
		return nil, fmt.Errorf("failed to load user memory: %w", err)
	}

	schedOpts := append([]SchedulerOption{WithClock(opts.Now)}, opts.Scheduler...)
	scheduler := NewQuestionScheduler(store, opts.UserID, opts.Random, opts.Logger.Named("questions"), schedOpts...)
	tasks := NewTaskManager(store, opts.UserID, opts.Now, opts.Logger.Named("tasks"))

	return NewDispatcher(DispatcherConfig{
		UserID:       opts.UserID,
		UserName:     opts.UserName,
		HistoryLimit: opts.HistoryLimit,
		Log:          store,
		Memory:       memory,
		Scheduler:    scheduler,
		Tasks:        tasks,
		Responder:    opts.Responder,
		Random:       opts.Random,
		Now:          opts.Now,
		Logger:       opts.Logger,
	}), nil
}

// Process handles one message and always returns a reply
func (d *Dispatcher) Process(ctx context.Context, text string) (response string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("turn panicked", zap.Any("panic", r))
			response = apology
		}
	}()

	d.logger.Debug("processing message", zap.String("text", text))

	if err := d.memory.Analyze(ctx, text); err != nil {
		d.logger.Warn("failed to analyze message", zap.Error(err))
	}
	d.appendTurn(models.RoleUser, text)

	if answer, ok := d.memory.RelevantMemory(text); ok {
		d.logger.Info("responding from memory")
		d.appendTurn(models.RoleAssistant, answer)
		d.saveInteraction(ctx, text, answer)
		return answer
	}

	intent := Classify(text)
	if intent != IntentNone {
		d.logger.Info("intent matched", zap.String("intent", string(intent)))
		response = d.handle(ctx, intent, text)
		d.lastIntent = intent
	} else {
		response = d.fallback(ctx, text)
	}

	d.appendTurn(models.RoleAssistant, response)
	d.saveInteraction(ctx, text, response)
	d.messageCount++

	q, err := d.scheduler.MaybeAsk(ctx, d.messageCount)
	if err != nil {
		d.logger.Warn("failed to schedule question", zap.Error(err))
	} else if q != nil {
		d.pending = q
		response = response + "\n\n" + q.Formatted()
		d.logger.Info("added proactive question", zap.String("category", q.Category))
	}

	// a non-command turn answers whatever is pending, including a question it just asked
	if d.pending != nil && answersQuestion(intent) {
		if _, err := d.scheduler.RecordAnswer(ctx, d.pending.Text, text); err != nil {
			d.logger.Warn("failed to record answer", zap.Error(err))
		}
		d.pending = nil
	}

	return response
}

// answersQuestion reports whether a turn with this intent is taken as a reply to a pending question.
// Anything that is not a command counts, which can misattribute unrelated chit-chat.
func answersQuestion(intent Intent) bool {
	switch intent {
	case IntentNone, IntentGreeting, IntentThanks, IntentAffirmation:
		return true
	default:
		return false
	}
}

// handle runs the handler for intent; errors and panics become an apology
func (d *Dispatcher) handle(ctx context.Context, intent Intent, text string) (response string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", zap.String("intent", string(intent)), zap.Any("panic", r))
			response = apology
		}
	}()

	h, ok := handlersByIntent[intent]
	if !ok {
		return "I'm not sure how to help with that yet."
	}
	out, err := h(d, ctx, text)
	if err != nil {
		d.logger.Error("handler failed", zap.String("intent", string(intent)), zap.Error(err))
		return apologyFor(intent)
	}
	return out
}

// fallback asks the optional responder, then falls back to keyword replies
func (d *Dispatcher) fallback(ctx context.Context, text string) string {
	if d.responder != nil {
		reply, err := d.responder.Respond(ctx, d.History(), text)
		if err == nil && reply != "" {
			return reply
		}
		if err != nil {
			d.logger.Warn("responder failed, using keyword reply", zap.Error(err))
		}
	}
	return keywordReply(text, d.rng)
}

func (d *Dispatcher) appendTurn(role models.Role, content string) {
	d.history = append(d.history, models.ConversationTurn{Role: role, Content: content})
	if len(d.history) > d.historyLimit {
		d.history = d.history[len(d.history)-d.historyLimit:]
	}
}

// saveInteraction logs the exchange and persists what was learned this turn
func (d *Dispatcher) saveInteraction(ctx context.Context, input, response string) {
	if err := d.log.AppendConversation(ctx, d.userID, input, response); err != nil {
		d.logger.Error("failed to save conversation", zap.Error(err))
	}
	if err := d.memory.Save(ctx); err != nil {
		d.logger.Error("failed to save memory", zap.Error(err))
	}
}

// History returns a copy of the rolling conversation history
func (d *Dispatcher) History() []models.ConversationTurn {
	out := make([]models.ConversationTurn, len(d.history))
	copy(out, d.history)
	return out
}

// PendingQuestion returns the question awaiting an answer, if any
func (d *Dispatcher) PendingQuestion() *Question {
	return d.pending
}

// Memory exposes the user model
func (d *Dispatcher) Memory() *UserMemory {
	return d.memory
}

// Scheduler exposes the proactive question scheduler
func (d *Dispatcher) Scheduler() *QuestionScheduler {
	return d.scheduler
}

// Tasks exposes the task manager
func (d *Dispatcher) Tasks() *TaskManager {
	return d.tasks
}
