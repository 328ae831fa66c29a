// ABOUTME: Tests for the proactive question scheduler
// ABOUTME: Gate conditions, daily limit, category selection, answers and toggling
package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harper/yaan/internal/storage"
	"github.com/harper/yaan/internal/storage/sqlite"
	"go.uber.org/zap/zaptest"
)

func newTestScheduler(t *testing.T, rng RandomSource, clock *testClock, opts ...SchedulerOption) *QuestionScheduler {
	t.Helper()
	opts = append([]SchedulerOption{WithClock(clock.Now)}, opts...)
	return NewQuestionScheduler(newTestStore(t), "u1", rng, zaptest.NewLogger(t), opts...)
}

func mustAsk(t *testing.T, s *QuestionScheduler, messages int) *Question {
	t.Helper()
	q, err := s.MaybeAsk(context.Background(), messages)
	if err != nil {
		t.Fatalf("MaybeAsk() error = %v", err)
	}
	return q
}

func TestScheduler_NeedsMinimumMessages(t *testing.T) {
	s := newTestScheduler(t, alwaysAsk, newTestClock())

	if q := mustAsk(t, s, 4); q != nil {
		t.Errorf("MaybeAsk(4) = %+v, want nil below min messages", q)
	}
	q := mustAsk(t, s, 5)
	if q == nil {
		t.Fatal("MaybeAsk(5) = nil, want a question")
	}
	if q.Category != "personal" || q.Text != "What do you do for work?" {
		t.Errorf("MaybeAsk(5) = %+v, want first personal question", q)
	}
	if !strings.HasPrefix(q.Formatted(), "💭 By the way, I'm curious: ") {
		t.Errorf("Formatted() = %q", q.Formatted())
	}
}

func TestScheduler_ProbabilityDraw(t *testing.T) {
	s := newTestScheduler(t, neverAsk, newTestClock())
	if q := mustAsk(t, s, 10); q != nil {
		t.Errorf("MaybeAsk() = %+v, want nil when the draw fails", q)
	}

	s = newTestScheduler(t, nil, newTestClock())
	if q := mustAsk(t, s, 10); q != nil {
		t.Errorf("MaybeAsk() = %+v, want nil without a random source", q)
	}
}

func TestScheduler_IntervalAndDailyLimit(t *testing.T) {
	clock := newTestClock()
	s := newTestScheduler(t, alwaysAsk, clock)

	first := mustAsk(t, s, 10)
	if first == nil {
		t.Fatal("first MaybeAsk() = nil")
	}
	if q := mustAsk(t, s, 10); q != nil {
		t.Errorf("MaybeAsk() right after a question = %+v, want nil", q)
	}

	clock.Advance(5 * time.Minute)
	second := mustAsk(t, s, 10)
	if second == nil {
		t.Fatal("MaybeAsk() after the interval = nil")
	}
	if second.Text == first.Text {
		t.Errorf("second question repeated %q", first.Text)
	}

	clock.Advance(5 * time.Minute)
	if q := mustAsk(t, s, 10); q != nil {
		t.Errorf("MaybeAsk() over the daily limit = %+v, want nil", q)
	}

	clock.Advance(24 * time.Hour)
	if q := mustAsk(t, s, 10); q == nil {
		t.Error("MaybeAsk() a day later = nil, want a question")
	}
}

func TestScheduler_PrefersLeastAnsweredCategory(t *testing.T) {
	clock := newTestClock()
	s := newTestScheduler(t, alwaysAsk, clock)
	ctx := context.Background()

	first := mustAsk(t, s, 10)
	if first == nil || first.Category != "personal" {
		t.Fatalf("first question = %+v, want personal", first)
	}
	ok, err := s.RecordAnswer(ctx, first.Text, "I build compilers")
	if err != nil || !ok {
		t.Fatalf("RecordAnswer() = %v, %v; want true, nil", ok, err)
	}

	clock.Advance(5 * time.Minute)
	second := mustAsk(t, s, 10)
	if second == nil || second.Category != "preferences" {
		t.Errorf("second question = %+v, want preferences", second)
	}
}

func TestScheduler_NeverRepeatsAndStopsWhenExhausted(t *testing.T) {
	categories := []QuestionCategory{
		{Name: "a", Questions: []string{"q1"}},
		{Name: "b", Questions: []string{"q2"}},
	}
	s := newTestScheduler(t, alwaysAsk, newTestClock(), WithCategories(categories), WithInterval(0))
	ctx := context.Background()
	if err := s.SetQuestionsPerDay(ctx, 10); err != nil {
		t.Fatalf("SetQuestionsPerDay() error = %v", err)
	}
	if err := s.SetMinMessages(ctx, 0); err != nil {
		t.Fatalf("SetMinMessages() error = %v", err)
	}

	var got []string
	for i := 0; i < 3; i++ {
		if q := mustAsk(t, s, 1); q != nil {
			got = append(got, q.Text)
		}
	}
	if strings.Join(got, ",") != "q1,q2" {
		t.Errorf("asked %v, want [q1 q2]", got)
	}
}

func TestScheduler_RecordAnswerOnce(t *testing.T) {
	s := newTestScheduler(t, alwaysAsk, newTestClock())
	ctx := context.Background()

	q := mustAsk(t, s, 10)
	if q == nil {
		t.Fatal("MaybeAsk() = nil")
	}
	ok, err := s.RecordAnswer(ctx, q.Text, "first")
	if err != nil || !ok {
		t.Fatalf("RecordAnswer() = %v, %v; want true, nil", ok, err)
	}
	ok, err = s.RecordAnswer(ctx, q.Text, "second")
	if err != nil {
		t.Fatalf("RecordAnswer() error = %v", err)
	}
	if ok {
		t.Error("RecordAnswer() answered the same question twice")
	}
	ok, _ = s.RecordAnswer(ctx, "never asked", "x")
	if ok {
		t.Error("RecordAnswer() matched a question that was never asked")
	}
}

func TestScheduler_Toggle(t *testing.T) {
	s := newTestScheduler(t, alwaysAsk, newTestClock())
	ctx := context.Background()

	off := false
	enabled, err := s.Toggle(ctx, &off)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if enabled {
		t.Error("Toggle(false) = true")
	}
	if q := mustAsk(t, s, 10); q != nil {
		t.Errorf("MaybeAsk() while disabled = %+v, want nil", q)
	}

	enabled, err = s.Toggle(ctx, nil)
	if err != nil {
		t.Fatalf("Toggle(nil) error = %v", err)
	}
	if !enabled {
		t.Error("Toggle(nil) after disable = false, want true")
	}
}

func TestScheduler_SummaryAndReset(t *testing.T) {
	s := newTestScheduler(t, alwaysAsk, newTestClock())
	ctx := context.Background()

	q := mustAsk(t, s, 10)
	if q == nil {
		t.Fatal("MaybeAsk() = nil")
	}
	sum, err := s.Summary(ctx, 5)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Stats.TotalAsked != 1 || sum.AskedToday != 1 || sum.MaxPerDay != 2 || !sum.Enabled {
		t.Errorf("Summary() = %+v", sum)
	}

	out := FormatLearningSummary(sum, s.Categories())
	for _, want := range []string{
		"**Questions Asked:** 1",
		"**Today's Questions:** 1/2",
		"- Personal: 1 asked, 0 answered",
		"⏸️ Pending",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatLearningSummary() = %q, missing %q", out, want)
		}
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	sum, err = s.Summary(ctx, 5)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Stats.TotalAsked != 0 || len(sum.Recent) != 0 {
		t.Errorf("Summary() after Reset() = %+v, want empty", sum)
	}
}

// replayingRepo runs every question transaction twice, like a retry after a failed commit
type replayingRepo struct {
	*sqlite.Storage
}

func (r replayingRepo) UpdateQuestions(ctx context.Context, userID string, fn func(storage.QuestionLedger) error) error {
	if err := r.Storage.UpdateQuestions(ctx, userID, fn); err != nil {
		return err
	}
	return r.Storage.UpdateQuestions(ctx, userID, fn)
}

func TestScheduler_RetriedTransactionStartsOver(t *testing.T) {
	clock := newTestClock()
	s := NewQuestionScheduler(replayingRepo{newTestStore(t)}, "u1", alwaysAsk, zaptest.NewLogger(t), WithClock(clock.Now))

	// the second run finds the interval not yet elapsed and records nothing
	if q := mustAsk(t, s, 5); q != nil {
		t.Errorf("MaybeAsk() = %+v, want nil when the last attempt asked nothing", q)
	}
}
