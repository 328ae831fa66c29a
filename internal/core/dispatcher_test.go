// ABOUTME: Tests for the Dispatcher turn pipeline
// ABOUTME: Memory short-circuit, intent routing, proactive questions, history and failure handling
package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage/sqlite"
	"go.uber.org/zap/zaptest"
)

func newTestDispatcher(t *testing.T, store *sqlite.Storage, rng RandomSource, clock *testClock, opts AssistantOptions) *Dispatcher {
	t.Helper()
	opts.UserID = "u1"
	opts.Random = rng
	opts.Now = clock.Now
	opts.Logger = zaptest.NewLogger(t)
	d, err := NewAssistant(context.Background(), store, nil, opts)
	if err != nil {
		t.Fatalf("NewAssistant() error = %v", err)
	}
	return d
}

type stubResponder struct {
	reply   string
	err     error
	panics  bool
	history int
}

func (r *stubResponder) Respond(_ context.Context, history []models.ConversationTurn, _ string) (string, error) {
	if r.panics {
		panic("responder blew up")
	}
	r.history = len(history)
	return r.reply, r.err
}

func TestNewAssistant_RequiresUser(t *testing.T) {
	_, err := NewAssistant(context.Background(), newTestStore(t), nil, AssistantOptions{})
	if err == nil {
		t.Fatal("NewAssistant() without a user id should fail")
	}
}

func TestProcess_AnswersFromMemory(t *testing.T) {
	store := newTestStore(t)
	d := newTestDispatcher(t, store, alwaysAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	if got := d.Process(ctx, "My name is Alice"); got != "Your name is Alice." {
		t.Errorf("Process() = %q, want the learned name", got)
	}
	if got := d.Process(ctx, "what's my name?"); got != "Your name is Alice." {
		t.Errorf("Process() = %q, want the learned name", got)
	}

	if d.messageCount != 0 {
		t.Errorf("messageCount = %d, memory answers should not count toward questions", d.messageCount)
	}
	if len(d.History()) != 4 {
		t.Errorf("History() = %d turns, want 4", len(d.History()))
	}

	recent, err := store.RecentConversations(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("RecentConversations() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Input != "what's my name?" {
		t.Errorf("RecentConversations() = %+v, want both exchanges newest first", recent)
	}
}

func TestProcess_TaskCommands(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{"remind me to call John tomorrow at 3pm", "✅ Reminder created for 2026-10-16 at 15:00!\n🟡 call John"},
		{"add todo: write tests #work", "✅ Todo added!\n🟡 write tests #work"},
		{"complete reminder 1", "✅ Reminder #1 marked as complete!"},
		{"delete todo 7", "Couldn't find todo #7. Check your list with 'show todos'."},
		{"complete task 2", "Couldn't find todo #2. Check your list with 'show todos'."},
		{"show my reminders", "You have no pending reminders. Add one with 'remind me to [task]'!"},
	}
	for _, tt := range tests {
		if got := d.Process(ctx, tt.text); got != tt.want {
			t.Errorf("Process(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}

	if got := d.Process(ctx, "show my todos"); !strings.Contains(got, "write tests") {
		t.Errorf("Process(show my todos) = %q, want the new todo listed", got)
	}
}

func TestProcess_TimeAndGreeting(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), alwaysAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	if got := d.Process(ctx, "hello"); got != "Good morning! How can I help you today?" {
		t.Errorf("first greeting = %q", got)
	}
	if got := d.Process(ctx, "hello"); got != "Hello again! What else can I help you with?" {
		t.Errorf("repeated greeting = %q", got)
	}
	if got := d.Process(ctx, "what time is it"); got != "The current time is 09:30 AM" {
		t.Errorf("time = %q", got)
	}
	if got := d.Process(ctx, "what is the date"); got != "Today is Thursday, October 15, 2026" {
		t.Errorf("date = %q", got)
	}
}

func TestProcess_FarewellUsesConfiguredName(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), alwaysAsk, newTestClock(), AssistantOptions{UserName: "Sam"})
	if got := d.Process(context.Background(), "bye"); got != "Goodbye, Sam! Have a great day!" {
		t.Errorf("Process(bye) = %q", got)
	}
}

func TestProcess_ProactiveQuestionFlow(t *testing.T) {
	store := newTestStore(t)
	clock := newTestClock()
	d := newTestDispatcher(t, store, alwaysAsk, clock, AssistantOptions{})
	ctx := context.Background()

	latest := func() models.AskedQuestion {
		t.Helper()
		recent, err := store.RecentQuestions(ctx, "u1", 1)
		if err != nil {
			t.Fatalf("RecentQuestions() error = %v", err)
		}
		if len(recent) != 1 {
			t.Fatalf("RecentQuestions() = %+v, want one question", recent)
		}
		return recent[0]
	}

	for i := 0; i < 4; i++ {
		if got := d.Process(ctx, "blorp"); strings.Contains(got, "By the way") {
			t.Fatalf("turn %d asked a question too early: %q", i+1, got)
		}
	}

	// the turn that asks is itself taken as the answer
	got := d.Process(ctx, "blorp")
	if !strings.HasSuffix(got, "\n\n💭 By the way, I'm curious: What do you do for work?") {
		t.Fatalf("fifth turn = %q, want a proactive question appended", got)
	}
	if d.PendingQuestion() != nil {
		t.Error("PendingQuestion() still set after a non-command turn")
	}
	if q := latest(); !q.Answered || q.Answer != "blorp" {
		t.Errorf("latest question = %+v, want it answered with blorp", q)
	}

	// a command turn asks but does not answer
	clock.Advance(6 * time.Minute)
	got = d.Process(ctx, "show my todos")
	if !strings.Contains(got, "By the way") {
		t.Fatalf("Process(show my todos) = %q, want a second question", got)
	}
	if d.PendingQuestion() == nil {
		t.Fatal("PendingQuestion() = nil after a command turn asked")
	}
	if q := latest(); q.Answered {
		t.Errorf("latest question = %+v, want it unanswered", q)
	}

	d.Process(ctx, "I build robots")
	if d.PendingQuestion() != nil {
		t.Error("PendingQuestion() still set after an answer")
	}
	if q := latest(); !q.Answered || q.Answer != "I build robots" {
		t.Errorf("latest question = %+v, want the answer recorded", q)
	}
}

func TestProcess_AnswerIntents(t *testing.T) {
	tests := []struct {
		reply   string
		answers bool
	}{
		{"I build robots", true},
		{"hello there", true},
		{"thanks a lot", true},
		{"yes", true},
		{"nope", false},
		{"show my reminders", false},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			store := newTestStore(t)
			d := newTestDispatcher(t, store, alwaysAsk, newTestClock(), AssistantOptions{})
			ctx := context.Background()

			for i := 0; i < 5; i++ {
				d.Process(ctx, "show my todos")
			}
			if d.PendingQuestion() == nil {
				t.Fatal("PendingQuestion() = nil after five command turns")
			}

			d.Process(ctx, tt.reply)
			if got := d.PendingQuestion() == nil; got != tt.answers {
				t.Errorf("pending cleared = %v, want %v", got, tt.answers)
			}

			recent, err := store.RecentQuestions(ctx, "u1", 1)
			if err != nil {
				t.Fatalf("RecentQuestions() error = %v", err)
			}
			if len(recent) != 1 {
				t.Fatalf("RecentQuestions() = %+v, want one question", recent)
			}
			if recent[0].Answered != tt.answers {
				t.Errorf("Answered = %v, want %v", recent[0].Answered, tt.answers)
			}
			if tt.answers && recent[0].Answer != tt.reply {
				t.Errorf("Answer = %q, want %q", recent[0].Answer, tt.reply)
			}
		})
	}
}

func TestProcess_NoQuestionsWhenDisabled(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), alwaysAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	got := d.Process(ctx, "stop asking questions")
	if !strings.HasPrefix(got, "✅ I've disabled proactive learning questions.") {
		t.Fatalf("Process(stop asking questions) = %q", got)
	}
	for i := 0; i < 6; i++ {
		if got := d.Process(ctx, "blorp"); strings.Contains(got, "By the way") {
			t.Fatalf("asked a question while disabled: %q", got)
		}
	}

	got = d.Process(ctx, "enable learning questions")
	if !strings.HasPrefix(got, "✅ I've enabled proactive learning questions.") {
		t.Errorf("Process(enable learning questions) = %q", got)
	}
}

func TestProcess_SchedulerOptions(t *testing.T) {
	ctx := context.Background()

	silent := newTestDispatcher(t, newTestStore(t), alwaysAsk, newTestClock(), AssistantOptions{
		Scheduler: []SchedulerOption{WithAskProbability(0)},
	})
	for i := 0; i < 6; i++ {
		if got := silent.Process(ctx, "blorp"); strings.Contains(got, "By the way") {
			t.Fatalf("asked a question with zero probability: %q", got)
		}
	}

	store := newTestStore(t)
	eager := newTestDispatcher(t, store, alwaysAsk, newTestClock(), AssistantOptions{
		Scheduler: []SchedulerOption{WithInterval(0)},
	})
	for i := 0; i < 6; i++ {
		eager.Process(ctx, "blorp")
	}
	stats, err := store.QuestionStats(ctx, "u1")
	if err != nil {
		t.Fatalf("QuestionStats() error = %v", err)
	}
	if stats.TotalAsked != 2 {
		t.Errorf("TotalAsked = %d, want 2 back-to-back questions", stats.TotalAsked)
	}
}

func TestProcess_HistoryIsBounded(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{HistoryLimit: 4})
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		d.Process(ctx, msg)
	}
	history := d.History()
	if len(history) != 4 {
		t.Fatalf("History() = %d turns, want 4", len(history))
	}
	if history[0].Content != "two" || history[2].Content != "three" || history[3].Role != models.RoleAssistant {
		t.Errorf("History() = %+v, want the last two exchanges", history)
	}
}

func TestProcess_Responder(t *testing.T) {
	ctx := context.Background()

	ok := &stubResponder{reply: "from the model"}
	d := newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{Responder: ok})
	if got := d.Process(ctx, "blorp"); got != "from the model" {
		t.Errorf("Process() = %q, want the responder reply", got)
	}
	if ok.history != 1 {
		t.Errorf("responder saw %d turns, want the current message", ok.history)
	}

	failing := &stubResponder{err: errors.New("offline")}
	d = newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{Responder: failing})
	if got := d.Process(ctx, "blorp"); got != generalReplies[0] {
		t.Errorf("Process() = %q, want the keyword reply", got)
	}

	panicking := &stubResponder{panics: true}
	d = newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{Responder: panicking})
	if got := d.Process(ctx, "blorp"); got != apology {
		t.Errorf("Process() = %q, want the apology", got)
	}
}

func TestProcess_StorageFailureApologizes(t *testing.T) {
	store := newTestStore(t)
	d := newTestDispatcher(t, store, neverAsk, newTestClock(), AssistantOptions{})
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := d.Process(context.Background(), "show my reminders")
	if got != "I encountered an issue retrieving your reminders. Please try again." {
		t.Errorf("Process() = %q, want the reminders apology", got)
	}
}

func TestProcess_ForgetMe(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	d.Process(ctx, "My name is Alice")
	got := d.Process(ctx, "forget everything")
	if !strings.HasPrefix(got, "I've cleared all my memories about you.") {
		t.Fatalf("Process(forget everything) = %q", got)
	}
	if d.Memory().Name() != "" {
		t.Errorf("Name() = %q after forgetting", d.Memory().Name())
	}
	if got := d.Process(ctx, "what's my name"); strings.Contains(got, "Alice") {
		t.Errorf("Process() = %q, still remembers the name", got)
	}
}

func TestCalculation(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{"what is 25 + 17", "25 + 17 = 42"},
		{"10 / 4", "10 / 4 = 2.50"},
		{"2.5 * 4", "2.5 * 4 = 10"},
		{"7 - 10", "7 - 10 = -3"},
		{"5 / 0", "Cannot divide by zero!"},
		{"calculate something", "I can help with simple calculations like '25 + 17' or '100 / 4'. Try asking me!"},
	}
	for _, tt := range tests {
		got, err := d.Calculation(ctx, tt.text)
		if err != nil {
			t.Fatalf("Calculation(%q) error = %v", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("Calculation(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDebugError(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	got, _ := d.DebugError(ctx, "I got a TypeError\n```python\nx = 5 + \"a\"\n```")
	if !strings.HasPrefix(got, "**TypeError**") {
		t.Errorf("DebugError() = %q, want TypeError help", got)
	}

	got, _ = d.DebugError(ctx, "can you look at this")
	if got != debugPrompt {
		t.Errorf("DebugError() = %q, want the prompt for details", got)
	}
}

func TestCodeExplainAndOpenApp(t *testing.T) {
	d := newTestDispatcher(t, newTestStore(t), neverAsk, newTestClock(), AssistantOptions{})
	ctx := context.Background()

	got, _ := d.CodeExplain(ctx, "what is recursion?")
	if !strings.HasPrefix(got, "**Recursion**") {
		t.Errorf("CodeExplain() = %q", got)
	}
	got, _ = d.CodeExplain(ctx, "what is monads")
	if !strings.HasPrefix(got, "I don't have a detailed explanation for 'monads' yet") {
		t.Errorf("CodeExplain(monads) = %q", got)
	}

	got, _ = d.OpenApp(ctx, "open Spotify")
	if got != "I'll try to open Spotify for you. (Feature coming soon)" {
		t.Errorf("OpenApp() = %q", got)
	}
}
