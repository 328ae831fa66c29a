// ABOUTME: Tests for the unified SQLite Storage
// ABOUTME: Verifies store wiring, task counts and the assembled profile snapshot
package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harper/yaan/internal/models"
)

func TestNewStorageInMemory(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.DB() == nil {
		t.Error("DB() should not be nil")
	}
}

func TestNewStorageWithPath(t *testing.T) {
	store, err := NewStorageWithPath(filepath.Join(t.TempDir(), "yaan.db"))
	if err != nil {
		t.Fatalf("NewStorageWithPath() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.AppendConversation(context.Background(), "u1", "hi", "hello"); err != nil {
		t.Errorf("AppendConversation() error = %v", err)
	}
}

func TestStorage_TaskCounts(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	r1, _ := store.CreateReminder(ctx, "u1", &models.Reminder{Title: "r1"})
	_, _ = store.CreateReminder(ctx, "u1", &models.Reminder{Title: "r2"})
	_, _ = store.CreateTodo(ctx, "u1", &models.Todo{Title: "t1"})
	_, _ = store.CreateTodo(ctx, "u2", &models.Todo{Title: "other user"})
	_, _ = store.CompleteReminder(ctx, "u1", r1)

	counts, err := store.TaskCounts(ctx, "u1")
	if err != nil {
		t.Fatalf("TaskCounts() error = %v", err)
	}
	want := models.TaskCounts{PendingReminders: 1, CompletedReminders: 1, PendingTodos: 1}
	if counts != want {
		t.Errorf("TaskCounts() = %+v, want %+v", counts, want)
	}
}

func TestStorage_ProfileDefaults(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	profile, err := store.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if !profile.Facts.IsEmpty() {
		t.Errorf("Facts = %+v, want empty", profile.Facts)
	}
	if profile.Style.Formality != models.FormalityNeutral {
		t.Errorf("Formality = %v, want neutral", profile.Style.Formality)
	}
	if profile.TotalMessages != 0 {
		t.Errorf("TotalMessages = %d, want 0", profile.TotalMessages)
	}
}

func TestStorage_ProfileLoaded(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	_ = store.SetPreference(ctx, "u1", models.PrefUserFacts, models.UserFacts{Name: "Alice"})
	_ = store.SetPreference(ctx, "u1", models.PrefInterests, models.Interests{"programming": 2})
	_, _ = store.IncrementCounter(ctx, "u1", models.PrefTotalMessages)

	profile, err := store.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.Facts.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", profile.Facts.Name)
	}
	if profile.Interests["programming"] != 2 {
		t.Errorf("Interests = %v", profile.Interests)
	}
	if profile.TotalMessages != 1 {
		t.Errorf("TotalMessages = %d, want 1", profile.TotalMessages)
	}
}
