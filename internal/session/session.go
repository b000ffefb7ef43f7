// Package session keeps one provider page per console browser session.
// Pages hold hook state, so each session owns its instance exclusively.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evmarket/analytics-console/internal/config"
	"github.com/evmarket/analytics-console/internal/view"
)

// ErrLimitReached is returned when a new session would exceed max_sessions.
var ErrLimitReached = errors.New("session limit reached")

// Eviction reasons reported to OnEvicted.
const (
	EvictIdle     = "idle"
	EvictLifetime = "lifetime"
)

// Session is one browser's page state.
type Session struct {
	ID        string
	Page      *view.ProviderPage
	createdAt time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

// Touch marks the session as used at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// IsIdle reports whether the session has been unused for longer than timeout.
func (s *Session) IsIdle(now time.Time, timeout time.Duration) bool {
	return timeout > 0 && now.Sub(s.LastUsed()) > timeout
}

// IsExpired reports whether the session is older than lifetime.
func (s *Session) IsExpired(now time.Time, lifetime time.Duration) bool {
	return lifetime > 0 && now.Sub(s.createdAt) > lifetime
}

// Stats is a point-in-time view of the manager.
type Stats struct {
	Active      int           `json:"active"`
	Max         int           `json:"max"`
	IdleTimeout time.Duration `json:"idle_timeout"`
	MaxLifetime time.Duration `json:"max_lifetime"`
}

// StatsCallback is called periodically with the manager stats.
type StatsCallback func(stats Stats)

// OnEvicted is called when the reaper closes a session.
type OnEvicted func(id, reason string)

// Manager creates sessions lazily and reaps idle or expired ones.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	newPage     func() *view.ProviderPage
	maxSessions int
	idleTimeout time.Duration
	maxLifetime time.Duration
	onEvicted   OnEvicted
	onLimit     func()
	now         func() time.Time

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewManager creates a manager building pages with newPage and starts its
// reaper.
func NewManager(cfg config.SessionConfig, newPage func() *view.ProviderPage) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		newPage:  newPage,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	m.UpdateConfig(cfg)
	go m.reapLoop(30 * time.Second)
	return m
}

// SetOnEvicted sets the eviction callback. Must be called before sessions
// are created.
func (m *Manager) SetOnEvicted(cb OnEvicted) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvicted = cb
}

// SetOnLimit sets the callback for refused session creations.
func (m *Manager) SetOnLimit(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLimit = cb
}

// UpdateConfig applies new limits. Existing sessions are kept even when
// they exceed a lowered max_sessions.
func (m *Manager) UpdateConfig(cfg config.SessionConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = cfg.MaxSessions
	m.idleTimeout = cfg.IdleTimeout
	m.maxLifetime = cfg.MaxLifetime
}

// Get returns a live session and marks it used. A session past its idle
// timeout or lifetime is evicted instead of being revived.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	idleTimeout, lifetime := m.idleTimeout, m.maxLifetime
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := m.now()
	switch {
	case s.IsExpired(now, lifetime):
		m.evict(id, EvictLifetime)
		return nil, false
	case s.IsIdle(now, idleTimeout):
		m.evict(id, EvictIdle)
		return nil, false
	}
	s.Touch(now)
	return s, true
}

func (m *Manager) evict(id, reason string) {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, id)
	cb := m.onEvicted
	m.mu.Unlock()

	slog.Info("session evicted", "session", id, "reason", reason)
	if cb != nil {
		cb(id, reason)
	}
}

// GetOrCreate returns the session for id, creating a new one with a fresh
// id when it does not exist. created reports whether a new session was made.
func (m *Manager) GetOrCreate(id string) (s *Session, created bool, err error) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false, nil
		}
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		m.reap()
		m.mu.Lock()
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		onLimit, limit := m.onLimit, m.maxSessions
		m.mu.Unlock()
		if onLimit != nil {
			onLimit()
		}
		slog.Warn("session limit reached", "max", limit)
		return nil, false, ErrLimitReached
	}

	now := m.now()
	s = &Session{
		ID:        uuid.NewString(),
		Page:      m.newPage(),
		createdAt: now,
		lastUsed:  now,
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Debug("created session", "session", s.ID)
	return s, true, nil
}

// Remove forgets a session.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	slog.Debug("removed session", "session", id)
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Active:      len(m.sessions),
		Max:         m.maxSessions,
		IdleTimeout: m.idleTimeout,
		MaxLifetime: m.maxLifetime,
	}
}

func (m *Manager) reapLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.reap()
		case <-m.stopCh:
			return
		}
	}
}

// reap closes sessions past their idle timeout or lifetime and returns how
// many were removed.
func (m *Manager) reap() int {
	now := m.now()

	m.mu.Lock()
	type eviction struct{ id, reason string }
	var evicted []eviction
	for id, s := range m.sessions {
		switch {
		case s.IsExpired(now, m.maxLifetime):
			evicted = append(evicted, eviction{id, EvictLifetime})
		case s.IsIdle(now, m.idleTimeout):
			evicted = append(evicted, eviction{id, EvictIdle})
		default:
			continue
		}
		delete(m.sessions, id)
	}
	cb := m.onEvicted
	m.mu.Unlock()

	for _, e := range evicted {
		slog.Info("session evicted", "session", e.id, "reason", e.reason)
		if cb != nil {
			cb(e.id, e.reason)
		}
	}
	return len(evicted)
}

// StartStatsLoop starts a periodic goroutine that reports the manager stats.
func (m *Manager) StartStatsLoop(interval time.Duration, cb StatsCallback) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cb(m.Stats())
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Close stops the background loops and drops every session. Safe to call
// multiple times.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stopCh)
	})

	m.mu.Lock()
	n := len(m.sessions)
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if n > 0 {
		slog.Info("closed sessions", "count", n)
	}
}
