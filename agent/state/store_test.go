package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	state := NewConversationState("thread_abc", "cust_123", now)
	state.AppendUser("What is my balance?", now)

	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(context.Background(), "thread_abc")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.CustomerID != "cust_123" {
		t.Fatalf("CustomerID = %q", loaded.CustomerID)
	}
	if len(loaded.Messages) != 1 || loaded.Messages[0].Role != RoleUser {
		t.Fatalf("unexpected messages: %+v", loaded.Messages)
	}
	if !loaded.CreatedAt.Equal(now) || !loaded.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v / %v", loaded.CreatedAt, loaded.UpdatedAt)
	}
}

func TestMemoryStoreLoadUnknownThread(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	_, err := store.Load(context.Background(), "thread_missing")
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}
}

func TestMemoryStoreSaveRejectsInvalidState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	if err := store.Save(context.Background(), nil); !errors.Is(err, ErrNilState) {
		t.Fatalf("Save(nil) error = %v, want ErrNilState", err)
	}

	now := time.Now()
	missingThread := NewConversationState("", "cust_123", now)
	if err := store.Save(context.Background(), missingThread); err == nil {
		t.Fatal("Save() error = nil for empty threadID")
	}

	missingCustomer := NewConversationState("thread_x", "  ", now)
	if err := store.Save(context.Background(), missingCustomer); err == nil {
		t.Fatal("Save() error = nil for empty customerID")
	}
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	state := NewConversationState("thread_iso", "cust_123", now)
	state.AppendUser("hello", now)
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the caller's copy after Save must not leak into the store.
	state.AppendAssistant("leaked", now.Add(time.Second))

	loaded, err := store.Load(context.Background(), "thread_iso")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(loaded.Messages))
	}

	// Same for mutations on a loaded copy.
	loaded.Messages[0].Content = "rewritten"
	again, err := store.Load(context.Background(), "thread_iso")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.Messages[0].Content != "hello" {
		t.Fatalf("stored content = %q", again.Messages[0].Content)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Now()

	if err := store.Save(context.Background(), NewConversationState("thread_del", "cust_123", now)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(context.Background(), "thread_del"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(context.Background(), "thread_del"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after delete error = %v", err)
	}
	if err := store.Delete(context.Background(), "thread_del"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Delete() twice error = %v", err)
	}
}

func TestMemoryStoreCount(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Now()

	n, err := store.Count(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Count() = %d, %v", n, err)
	}

	for _, id := range []string{"thread_1", "thread_2", "thread_3"} {
		if err := store.Save(context.Background(), NewConversationState(id, "cust_123", now)); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	n, err = store.Count(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v", n, err)
	}
}
