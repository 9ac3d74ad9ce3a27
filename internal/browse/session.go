package browse

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hexrift/nft-catalog/internal/metrics"
	"github.com/hexrift/nft-catalog/pkg/logger"
)

// Session owns the browse views of one client, keyed by view name, plus the
// local follow state. Follow toggles are UI state only and are never
// persisted anywhere.
type Session struct {
	ID string

	mu        sync.Mutex
	views     map[string]*View
	following map[string]bool
	delta     map[string]int
	lastSeen  time.Time
	clock     Clock
}

func newSession(id string, clock Clock) *Session {
	return &Session{
		ID:        id,
		views:     make(map[string]*View),
		following: make(map[string]bool),
		delta:     make(map[string]int),
		lastSeen:  clock.Now(),
		clock:     clock,
	}
}

// View returns the named view, creating it on first use. When the query key
// changed since the last call (rapid navigation between authors, say), the
// view rekeys, which cancels the old key's in-flight request.
func (s *Session) View(name, key string, fetcher Fetcher) *View {
	s.mu.Lock()
	v, ok := s.views[name]
	if !ok {
		v = NewView(key, fetcher, s.clock)
		s.views[name] = v
	}
	s.lastSeen = s.clock.Now()
	s.mu.Unlock()

	if ok && v.Key() != key {
		v.Rekey(key)
	}
	return v
}

// ToggleFollow flips the session-local follow flag for an author and returns
// the new flag with the follower-count delta to apply at render time. The
// rendered count never drops below zero.
func (s *Session) ToggleFollow(authorID string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := !s.following[authorID]
	s.following[authorID] = next
	if next {
		s.delta[authorID]++
	} else {
		s.delta[authorID]--
	}
	s.lastSeen = s.clock.Now()
	return next, s.delta[authorID]
}

// FollowState reports the current flag and delta for an author.
func (s *Session) FollowState(authorID string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.following[authorID], s.delta[authorID]
}

// Close tears down every view, cancelling outstanding fetches and stopping
// tickers.
func (s *Session) Close() {
	s.mu.Lock()
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.views = make(map[string]*View)
	s.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager tracks sessions by id and expires idle ones so their periodic work
// never leaks.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	clock    Clock
	log      *logger.Logger
	metrics  *metrics.Metrics
	stop     chan struct{}
	done     chan struct{}
}

// NewManager starts a manager whose janitor sweeps idle sessions every
// ttl/2.
func NewManager(ttl time.Duration, clock Clock, log *logger.Logger, m *metrics.Metrics) *Manager {
	mgr := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		clock:    clock,
		log:      log,
		metrics:  m,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go mgr.janitor()
	return mgr
}

// Get returns the session for id, creating one under a fresh uuid when id is
// empty or unknown.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	s := newSession(id, m.clock)
	m.sessions[id] = s
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return s
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes and removes sessions idle past the ttl. The janitor calls
// this on its tick; tests call it directly.
func (m *Manager) Sweep() {
	cutoff := m.clock.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.log.Infow("expired idle sessions", "count", len(expired))
	}
}

// Close stops the janitor and tears down every session.
func (m *Manager) Close() {
	close(m.stop)
	<-m.done

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) janitor() {
	defer close(m.done)
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}
