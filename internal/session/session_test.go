package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evmarket/analytics-console/internal/analytics"
	"github.com/evmarket/analytics-console/internal/config"
	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/transport"
	"github.com/evmarket/analytics-console/internal/view"
)

type nopCaller struct{}

func (nopCaller) Do(context.Context, transport.Request) (*transport.Response, error) {
	return &transport.Response{StatusCode: 200, Body: []byte(`[]`)}, nil
}

func newPage() *view.ProviderPage {
	f := hooks.New(analytics.New(nopCaller{}, nil), hooks.Defaults{}, nil)
	return view.NewProviderPage(f, download.NewMemory(), nil)
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		MaxSessions: 2,
		IdleTimeout: time.Minute,
		MaxLifetime: time.Hour,
	}
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T, cfg config.SessionConfig) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(cfg, newPage)
	m.now = clock.Now
	t.Cleanup(m.Close)
	return m, clock
}

func TestGetOrCreate(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	s1, created, err := m.GetOrCreate("")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !created {
		t.Error("expected a new session")
	}
	if s1.ID == "" || s1.Page == nil {
		t.Fatalf("session not initialized: %+v", s1)
	}

	s2, created, err := m.GetOrCreate(s1.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if created || s2 != s1 {
		t.Error("expected the same session instance")
	}
	if s2.Page != s1.Page {
		t.Error("expected the session to keep its page")
	}
}

func TestGetOrCreateUnknownID(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	s, created, err := m.GetOrCreate("stale-cookie")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !created || s.ID == "stale-cookie" {
		t.Errorf("expected a fresh id, got created=%v id=%s", created, s.ID)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	a, _, _ := m.GetOrCreate("")
	b, _, _ := m.GetOrCreate("")
	if a.ID == b.ID {
		t.Error("expected distinct ids")
	}
	if a.Page == b.Page {
		t.Error("expected each session to own its page")
	}
}

func TestLimit(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	var limited int
	m.SetOnLimit(func() { limited++ })

	m.GetOrCreate("")
	m.GetOrCreate("")

	_, _, err := m.GetOrCreate("")
	if !errors.Is(err, ErrLimitReached) {
		t.Errorf("expected ErrLimitReached, got %v", err)
	}
	if limited != 1 {
		t.Errorf("expected limit callback once, got %d", limited)
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 sessions, got %d", m.Count())
	}
}

func TestLimitReapsBeforeRefusing(t *testing.T) {
	m, clock := newTestManager(t, testConfig())

	m.GetOrCreate("")
	m.GetOrCreate("")
	clock.Advance(2 * time.Minute)

	if _, _, err := m.GetOrCreate(""); err != nil {
		t.Errorf("expected idle sessions to make room, got %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 session, got %d", m.Count())
	}
}

func TestReap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 10
	m, clock := newTestManager(t, cfg)

	evicted := map[string]string{}
	m.SetOnEvicted(func(id, reason string) { evicted[id] = reason })

	idle, _, _ := m.GetOrCreate("")
	busy, _, _ := m.GetOrCreate("")

	clock.Advance(45 * time.Second)
	m.Get(busy.ID)
	clock.Advance(30 * time.Second)

	if n := m.reap(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if evicted[idle.ID] != EvictIdle {
		t.Errorf("expected idle eviction, got %v", evicted)
	}
	if _, ok := m.Get(busy.ID); !ok {
		t.Error("recently used session should survive")
	}

	for i := 0; i < 80; i++ {
		clock.Advance(50 * time.Second)
		m.Get(busy.ID)
	}
	if _, ok := m.Get(busy.ID); ok {
		t.Error("session past its lifetime should be gone")
	}
}

func TestGetEvictsIdleSession(t *testing.T) {
	m, clock := newTestManager(t, testConfig())

	evicted := map[string]string{}
	m.SetOnEvicted(func(id, reason string) { evicted[id] = reason })

	s, _, _ := m.GetOrCreate("")
	clock.Advance(90 * time.Second)

	if _, ok := m.Get(s.ID); ok {
		t.Error("idle session should not be revived")
	}
	if evicted[s.ID] != EvictIdle {
		t.Errorf("expected idle eviction, got %v", evicted)
	}
	if m.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", m.Count())
	}

	fresh, created, err := m.GetOrCreate(s.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !created || fresh.ID == s.ID {
		t.Errorf("expected a fresh session, got created=%v id=%s", created, fresh.ID)
	}
}

func TestReapLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = 0
	m, clock := newTestManager(t, cfg)

	evicted := map[string]string{}
	m.SetOnEvicted(func(id, reason string) { evicted[id] = reason })

	s, _, _ := m.GetOrCreate("")
	clock.Advance(2 * time.Hour)
	m.reap()

	if evicted[s.ID] != EvictLifetime {
		t.Errorf("expected lifetime eviction, got %v", evicted)
	}
}

func TestRemoveAndStats(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	s, _, _ := m.GetOrCreate("")
	stats := m.Stats()
	if stats.Active != 1 || stats.Max != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if !m.Remove(s.ID) {
		t.Error("expected Remove to succeed")
	}
	if m.Remove(s.ID) {
		t.Error("expected second Remove to report false")
	}
	if m.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", m.Count())
	}
}

func TestUpdateConfig(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	m.GetOrCreate("")
	m.GetOrCreate("")

	m.UpdateConfig(config.SessionConfig{MaxSessions: 3, IdleTimeout: time.Minute, MaxLifetime: time.Hour})
	if _, _, err := m.GetOrCreate(""); err != nil {
		t.Errorf("expected raised limit to allow a session, got %v", err)
	}
}

func TestStatsLoop(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	m.GetOrCreate("")

	got := make(chan Stats, 1)
	m.StartStatsLoop(10*time.Millisecond, func(s Stats) {
		select {
		case got <- s:
		default:
		}
	})

	select {
	case s := <-got:
		if s.Active != 1 {
			t.Errorf("expected 1 active session, got %d", s.Active)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stats callback not called")
	}
}
