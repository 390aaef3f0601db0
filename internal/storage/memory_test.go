package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

func TestMemoryStoreCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	session := &domain.Session{
		ID:     "test-session-1",
		Status: domain.SessionActive,
		Transcript: []domain.Turn{
			{Role: domain.RoleUser, Text: "hello", At: time.Now()},
			{Role: domain.RoleAssistant, Text: "Hello! How can I assist with your smart home or cooking?", At: time.Now()},
		},
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Save.
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Load.
	loaded, err := store.Load(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != session.ID {
		t.Fatalf("expected ID %s, got %s", session.ID, loaded.ID)
	}
	if len(loaded.Transcript) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(loaded.Transcript))
	}

	// Load nonexistent.
	_, err = store.Load(ctx, "nonexistent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Delete.
	if err := store.Delete(ctx, "test-session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = store.Load(ctx, "test-session-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete nonexistent.
	if err := store.Delete(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	session := &domain.Session{ID: "s1", Transcript: []domain.Turn{{Role: domain.RoleUser, Text: "hi"}}}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	session.Transcript[0].Text = "changed"
	session.Transcript = append(session.Transcript, domain.Turn{Text: "extra"})

	loaded, _ := store.Load(ctx, "s1")
	if len(loaded.Transcript) != 1 || loaded.Transcript[0].Text != "hi" {
		t.Fatalf("store shares state with caller: %+v", loaded.Transcript)
	}
}

func TestMemoryStoreListActiveFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	now := time.Now()
	sessions := []*domain.Session{
		{ID: "s1", Status: domain.SessionActive, StartedAt: now.Add(time.Minute)},
		{ID: "s2", Status: domain.SessionActive, StartedAt: now},
		{ID: "s3", Status: domain.SessionExpired, StartedAt: now},
		{ID: "s4", Status: domain.SessionClosed, StartedAt: now},
	}

	for _, s := range sessions {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active sessions, got %d", len(active))
	}
	if active[0].ID != "s2" {
		t.Fatalf("expected oldest first, got %s", active[0].ID)
	}
}
