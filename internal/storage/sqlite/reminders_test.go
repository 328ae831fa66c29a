// ABOUTME: Tests for reminder storage
// ABOUTME: Verifies ordering, the complete/delete lifecycle and not-found results
package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
)

func newTestReminderStore(t *testing.T) *ReminderStore {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewReminderStore(db)
}

func TestReminderStore_RoundTrip(t *testing.T) {
	store := newTestReminderStore(t)
	ctx := context.Background()

	created := &models.Reminder{
		Title:    "call John",
		DueDate:  "2026-10-16",
		DueTime:  "15:00",
		Priority: models.PriorityMedium,
	}
	id, err := store.CreateReminder(ctx, "u1", created)
	if err != nil {
		t.Fatalf("CreateReminder() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateReminder() id = %d, want > 0", id)
	}

	pending, err := store.ListReminders(ctx, "u1", models.StatusPending)
	if err != nil {
		t.Fatalf("ListReminders() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("ListReminders(pending) returned %d, want 1", len(pending))
	}

	got := pending[0]
	if diff := cmp.Diff(*created, got, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("pending reminder mismatch (-want +got):\n%s", diff)
	}

	ok, err := store.CompleteReminder(ctx, "u1", id)
	if err != nil {
		t.Fatalf("CompleteReminder() error = %v", err)
	}
	if !ok {
		t.Fatal("CompleteReminder() = false, want true")
	}

	pending, _ = store.ListReminders(ctx, "u1", models.StatusPending)
	if len(pending) != 0 {
		t.Errorf("pending after complete = %d, want 0", len(pending))
	}

	completed, err := store.ListReminders(ctx, "u1", models.StatusCompleted)
	if err != nil {
		t.Fatalf("ListReminders(completed) error = %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("ListReminders(completed) returned %d, want 1", len(completed))
	}
	if completed[0].CompletedAt == nil {
		t.Error("CompletedAt should be set after completion")
	}
	if completed[0].Status != models.StatusCompleted {
		t.Errorf("Status = %v, want completed", completed[0].Status)
	}
}

func TestReminderStore_CompleteTwiceKeepsFirstTime(t *testing.T) {
	store := newTestReminderStore(t)
	ctx := context.Background()

	id, _ := store.CreateReminder(ctx, "u1", &models.Reminder{Title: "water plants"})
	_, _ = store.CompleteReminder(ctx, "u1", id)
	first, err := store.GetReminder(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetReminder() error = %v", err)
	}

	ok, err := store.CompleteReminder(ctx, "u1", id)
	if err != nil || !ok {
		t.Fatalf("second CompleteReminder() = %v, %v", ok, err)
	}
	second, _ := store.GetReminder(ctx, "u1", id)
	if !first.CompletedAt.Equal(*second.CompletedAt) {
		t.Errorf("CompletedAt changed from %v to %v", first.CompletedAt, second.CompletedAt)
	}
}

func TestReminderStore_NotFound(t *testing.T) {
	store := newTestReminderStore(t)
	ctx := context.Background()

	ok, err := store.CompleteReminder(ctx, "u1", 42)
	if err != nil {
		t.Fatalf("CompleteReminder() error = %v", err)
	}
	if ok {
		t.Error("CompleteReminder(42) = true, want false")
	}

	ok, err = store.DeleteReminder(ctx, "u1", 42)
	if err != nil {
		t.Fatalf("DeleteReminder() error = %v", err)
	}
	if ok {
		t.Error("DeleteReminder(42) = true, want false")
	}

	if _, err := store.GetReminder(ctx, "u1", 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetReminder(42) error = %v, want ErrNotFound", err)
	}
}

func TestReminderStore_Delete(t *testing.T) {
	store := newTestReminderStore(t)
	ctx := context.Background()

	id, _ := store.CreateReminder(ctx, "u1", &models.Reminder{Title: "pay rent"})
	ok, err := store.DeleteReminder(ctx, "u1", id)
	if err != nil || !ok {
		t.Fatalf("DeleteReminder() = %v, %v; want true, nil", ok, err)
	}

	all, _ := store.ListReminders(ctx, "u1", models.StatusAll)
	if len(all) != 0 {
		t.Errorf("ListReminders(all) after delete = %d, want 0", len(all))
	}

	// ids are never reused
	next, _ := store.CreateReminder(ctx, "u1", &models.Reminder{Title: "pay rent again"})
	if next <= id {
		t.Errorf("new id %d should be greater than deleted id %d", next, id)
	}
}

func TestReminderStore_Ordering(t *testing.T) {
	store := newTestReminderStore(t)
	ctx := context.Background()

	inputs := []models.Reminder{
		{Title: "low undated", Priority: models.PriorityLow},
		{Title: "medium late", Priority: models.PriorityMedium, DueDate: "2026-12-01"},
		{Title: "high undated", Priority: models.PriorityHigh},
		{Title: "medium undated", Priority: models.PriorityMedium},
		{Title: "high early", Priority: models.PriorityHigh, DueDate: "2026-10-20"},
		{Title: "medium early", Priority: models.PriorityMedium, DueDate: "2026-10-16"},
	}
	for i := range inputs {
		if _, err := store.CreateReminder(ctx, "u1", &inputs[i]); err != nil {
			t.Fatalf("CreateReminder() error = %v", err)
		}
	}

	list, err := store.ListReminders(ctx, "u1", models.StatusAll)
	if err != nil {
		t.Fatalf("ListReminders() error = %v", err)
	}

	var titles []string
	for _, r := range list {
		titles = append(titles, r.Title)
	}
	want := []string{"high early", "high undated", "medium early", "medium late", "medium undated", "low undated"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestReminderStore_EmptyTitle(t *testing.T) {
	store := newTestReminderStore(t)
	if _, err := store.CreateReminder(context.Background(), "u1", &models.Reminder{}); err == nil {
		t.Error("CreateReminder() with empty title should fail")
	}
}

func TestReminderStore_UserIsolation(t *testing.T) {
	store := newTestReminderStore(t)
	ctx := context.Background()

	id, _ := store.CreateReminder(ctx, "u1", &models.Reminder{Title: "mine"})

	ok, _ := store.DeleteReminder(ctx, "u2", id)
	if ok {
		t.Error("another user should not delete this reminder")
	}
	list, _ := store.ListReminders(ctx, "u2", models.StatusAll)
	if len(list) != 0 {
		t.Errorf("u2 sees %d reminders, want 0", len(list))
	}
}
