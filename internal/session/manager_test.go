package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/engine"
	"github.com/hammamikhairi/ottohome/internal/logger"
	"github.com/hammamikhairi/ottohome/internal/recipe"
	"github.com/hammamikhairi/ottohome/internal/storage"
)

func newTestManager(opts ...Option) *Manager {
	log := logger.New(logger.LevelOff, nil)
	return NewManager(storage.NewMemoryStore(log), recipe.NewMemoryCatalog(log), log, opts...)
}

func TestManagerSendRecordsTranscript(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	sess, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reply, err := m.Send(ctx, sess.ID, "make pizza")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Intent != domain.IntentCookDish || len(reply.VideoURLs) != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	turns, err := m.History(ctx, sess.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[0].Text != "make pizza" {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != domain.RoleAssistant || len(turns[1].VideoURLs) != 1 {
		t.Fatalf("unexpected assistant turn: %+v", turns[1])
	}
}

func TestManagerSessionsAreIsolated(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	a, _ := m.Create(ctx)
	b, _ := m.Create(ctx)

	if _, err := m.Send(ctx, a.ID, "turn on the light"); err != nil {
		t.Fatalf("send: %v", err)
	}

	reply, err := m.Send(ctx, b.ID, "is the light on")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Text != "The light is off." {
		t.Fatalf("session b saw session a's registry: %q", reply.Text)
	}

	devices, err := m.Devices(ctx, a.ID)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if devices[0].Name != domain.Light || devices[0].State != domain.StateOn {
		t.Fatalf("unexpected light in a: %+v", devices[0])
	}
}

func TestManagerClearHistoryKeepsDevices(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	sess, _ := m.Create(ctx)

	m.Send(ctx, sess.ID, "turn on the fan")
	if err := m.ClearHistory(ctx, sess.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	turns, _ := m.History(ctx, sess.ID)
	if len(turns) != 0 {
		t.Fatalf("expected empty transcript, got %d turns", len(turns))
	}
	reply, _ := m.Send(ctx, sess.ID, "is the fan on")
	if reply.Text != "The fan is on." {
		t.Fatalf("clearing history reset devices: %q", reply.Text)
	}
}

func TestManagerUnknownSession(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	if _, err := m.Send(ctx, "missing", "hello"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("send: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := m.History(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("history: expected ErrSessionNotFound, got %v", err)
	}
	if err := m.Close(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("close: expected ErrSessionNotFound, got %v", err)
	}
}

func TestManagerClose(t *testing.T) {
	var counts []int
	m := newTestManager(WithActiveHook(func(n int) { counts = append(counts, n) }))
	ctx := context.Background()

	sess, _ := m.Create(ctx)
	if err := m.Close(ctx, sess.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if m.Active() != 0 {
		t.Fatalf("expected 0 active, got %d", m.Active())
	}
	if _, err := m.Send(ctx, sess.ID, "hello"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after close, got %v", err)
	}
	if len(counts) != 2 || counts[0] != 1 || counts[1] != 0 {
		t.Fatalf("unexpected active hook calls: %v", counts)
	}
}

func TestManagerMaxSessions(t *testing.T) {
	m := newTestManager(WithMaxSessions(1))
	ctx := context.Background()

	if _, err := m.Create(ctx); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := m.Create(ctx); !errors.Is(err, domain.ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}
}

func TestManagerSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := newTestManager(WithTTL(10*time.Minute), WithClock(clock))
	ctx := context.Background()

	idle, _ := m.Create(ctx)
	busy, _ := m.Create(ctx)

	now = now.Add(8 * time.Minute)
	m.Send(ctx, busy.ID, "hello")

	now = now.Add(5 * time.Minute)
	if n := m.Sweep(ctx); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if _, err := m.Send(ctx, idle.ID, "hello"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("idle session should be gone, got %v", err)
	}
	if _, err := m.Send(ctx, busy.ID, "hello"); err != nil {
		t.Fatalf("busy session should survive: %v", err)
	}

	list, _ := m.List(ctx)
	if len(list) != 1 || list[0].ID != busy.ID {
		t.Fatalf("unexpected active list: %v", list)
	}
}

type panicParser struct{}

func (panicParser) Parse(ctx context.Context, input string) (domain.Intent, error) {
	panic("registry exploded")
}

func TestManagerRecoversPanics(t *testing.T) {
	m := newTestManager(WithEngineOptions(engine.WithParser(panicParser{})))
	ctx := context.Background()
	sess, _ := m.Create(ctx)

	reply, err := m.Send(ctx, sess.ID, "turn on the light")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	want := "Error processing command: registry exploded. Invalid command. Please try a valid home-related command."
	if reply.Text != want {
		t.Fatalf("got %q, want %q", reply.Text, want)
	}

	turns, _ := m.History(ctx, sess.ID)
	if len(turns) != 2 || !strings.HasPrefix(turns[1].Text, "Error processing command") {
		t.Fatalf("fault reply should be recorded: %+v", turns)
	}
}

func TestManagerConcurrentSends(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	sess, _ := m.Create(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Send(ctx, sess.ID, "turn on the light"); err != nil {
				t.Errorf("send: %v", err)
			}
		}()
	}
	wg.Wait()

	turns, _ := m.History(ctx, sess.ID)
	if len(turns) != 40 {
		t.Fatalf("expected 40 turns, got %d", len(turns))
	}
}
