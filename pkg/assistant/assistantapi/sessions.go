package assistantapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/assistant"
)

// Factory builds a fresh orchestrator for a new session.
type Factory func() *assistant.Orchestrator

type session struct {
	mu       sync.Mutex
	orch     *assistant.Orchestrator
	lastUsed time.Time
}

// Sessions keeps one orchestrator per session id. Turns within a session
// run one at a time; different sessions run concurrently.
type Sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	factory Factory
	max     int
	now     func() time.Time
}

func NewSessions(factory Factory, max int) *Sessions {
	if max <= 0 {
		max = 100
	}
	return &Sessions{
		items:   make(map[string]*session),
		factory: factory,
		max:     max,
		now:     time.Now,
	}
}

// NewID returns an unused session id.
func (s *Sessions) NewID() string {
	return uuid.NewString()
}

// acquire returns the session for id, creating it when absent. When the
// table is full the least recently used session is dropped.
func (s *Sessions) acquire(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.items[id]; ok {
		sess.lastUsed = s.now()
		return sess
	}
	if len(s.items) >= s.max {
		s.evictOldest()
	}
	sess := &session{orch: s.factory(), lastUsed: s.now()}
	s.items[id] = sess
	return sess
}

func (s *Sessions) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.items {
		if oldestID == "" || sess.lastUsed.Before(oldest) {
			oldestID, oldest = id, sess.lastUsed
		}
	}
	delete(s.items, oldestID)
}

// Remove drops a session and reports whether it existed.
func (s *Sessions) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
