// Package session gives every chat conversation its own engine and
// serializes access to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/engine"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

// DefaultTTL is how long an idle session survives before Sweep removes it.
const DefaultTTL = 30 * time.Minute

const faultFormat = "Error processing command: %v. " + domain.FallbackText

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type live struct {
	engine   *engine.Engine
	lastSeen time.Time
}

// Manager owns the per-session engines. Calls for the same session are
// serialized; different sessions proceed in parallel.
type Manager struct {
	store   domain.SessionStore
	recipes domain.RecipeCatalog
	log     *logger.Logger

	mu      sync.Mutex
	locks   map[string]*lockEntry
	engines map[string]*live

	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	engineOpts  []engine.Option
	onChange    func(active int)
}

// Option configures the Manager.
type Option func(*Manager)

// WithTTL sets the idle timeout. Zero or negative disables expiry.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		m.ttl = d
	}
}

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		m.maxSessions = n
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithEngineOptions passes options to every engine the manager creates.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithActiveHook is called with the live session count whenever it changes.
func WithActiveHook(fn func(active int)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// NewManager creates a session manager.
func NewManager(store domain.SessionStore, recipes domain.RecipeCatalog, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		recipes: recipes,
		log:     log,
		locks:   make(map[string]*lockEntry),
		engines: make(map[string]*live),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// withLock runs fn while holding the lock for the session.
func (m *Manager) withLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn(ctx)
}

// Create starts a new session with a fresh device registry.
func (m *Manager) Create(ctx context.Context) (*domain.Session, error) {
	now := m.now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Status:    domain.SessionActive,
		StartedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.engines) >= m.maxSessions {
		m.mu.Unlock()
		return nil, domain.ErrTooManySessions
	}
	m.engines[sess.ID] = &live{
		engine:   engine.New(m.recipes, m.log, m.engineOpts...),
		lastSeen: now,
	}
	active := len(m.engines)
	m.mu.Unlock()

	if err := m.store.Save(ctx, sess); err != nil {
		m.drop(sess.ID)
		return nil, fmt.Errorf("saving session: %w", err)
	}
	m.changed(active)
	m.log.Info("session %s started", sess.ID)
	return sess, nil
}

// Send interprets one utterance in the session and records both turns.
// A panic inside the interpreter is turned into an error reply; the
// session stays usable.
func (m *Manager) Send(ctx context.Context, id, text string) (domain.Reply, error) {
	var reply domain.Reply
	err := m.withLock(ctx, id, func(ctx context.Context) error {
		eng, err := m.touch(id)
		if err != nil {
			return err
		}
		sess, err := m.load(ctx, id)
		if err != nil {
			return err
		}

		reply = m.handle(ctx, eng, text)

		now := m.now()
		sess.Transcript = append(sess.Transcript,
			domain.Turn{Role: domain.RoleUser, Text: text, At: now},
			domain.Turn{Role: domain.RoleAssistant, Text: reply.Text, VideoURLs: reply.VideoURLs, At: now},
		)
		sess.UpdatedAt = now
		if err := m.store.Save(ctx, sess); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		return nil
	})
	return reply, err
}

func (m *Manager) handle(ctx context.Context, eng *engine.Engine, text string) (reply domain.Reply) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("interpreter panic on %q: %v", text, r)
			reply = domain.Reply{Text: fmt.Sprintf(faultFormat, r), Intent: domain.IntentUnknown}
		}
	}()
	return eng.Handle(ctx, text)
}

// History returns the transcript of the session.
func (m *Manager) History(ctx context.Context, id string) ([]domain.Turn, error) {
	var turns []domain.Turn
	err := m.withLock(ctx, id, func(ctx context.Context) error {
		sess, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		turns = sess.Transcript
		return nil
	})
	return turns, err
}

// ClearHistory empties the transcript. Device states are untouched.
func (m *Manager) ClearHistory(ctx context.Context, id string) error {
	return m.withLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.touch(id); err != nil {
			return err
		}
		sess, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		sess.Transcript = nil
		sess.UpdatedAt = m.now()
		m.log.Debug("cleared history for session %s", id)
		return m.store.Save(ctx, sess)
	})
}

// Devices returns the device snapshot of the session's registry.
func (m *Manager) Devices(ctx context.Context, id string) ([]domain.Device, error) {
	var out []domain.Device
	err := m.withLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		l, ok := m.engines[id]
		m.mu.Unlock()
		if !ok {
			return domain.ErrSessionNotFound
		}
		out = l.engine.Devices()
		return nil
	})
	return out, err
}

// Close ends a session and discards its registry.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.withLock(ctx, id, func(ctx context.Context) error {
		if !m.drop(id) {
			return domain.ErrSessionNotFound
		}
		if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("deleting session: %w", err)
		}
		m.log.Info("session %s closed", id)
		return nil
	})
}

// List returns the active sessions.
func (m *Manager) List(ctx context.Context) ([]*domain.Session, error) {
	return m.store.ListActive(ctx)
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engines)
}

// Sweep removes sessions idle for longer than the TTL and returns how
// many were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var stale []string
	for id, l := range m.engines {
		if l.lastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	removed := 0
	for _, id := range stale {
		err := m.withLock(ctx, id, func(ctx context.Context) error {
			// Re-check under the session lock; a Send may have raced in.
			m.mu.Lock()
			l, ok := m.engines[id]
			expired := ok && l.lastSeen.Before(cutoff)
			m.mu.Unlock()
			if !expired {
				return nil
			}
			m.drop(id)
			removed++
			return m.store.Delete(ctx, id)
		})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			m.log.Warn("expiring session %s: %v", id, err)
		}
	}
	if removed > 0 {
		m.log.Info("expired %d idle sessions", removed)
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// touch refreshes the idle timer and returns the session's engine.
func (m *Manager) touch(id string) (*engine.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.engines[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	l.lastSeen = m.now()
	return l.engine, nil
}

func (m *Manager) load(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := m.store.Load(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

func (m *Manager) drop(id string) bool {
	m.mu.Lock()
	_, ok := m.engines[id]
	delete(m.engines, id)
	active := len(m.engines)
	m.mu.Unlock()

	if ok {
		m.changed(active)
	}
	return ok
}

func (m *Manager) changed(active int) {
	if m.onChange != nil {
		m.onChange(active)
	}
}
