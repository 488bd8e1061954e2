package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/map-point-info/internal/enrich"
)

var (
	// ErrNotFound is returned when no session exists for an ID.
	ErrNotFound = errors.New("session not found")
)

// OrchestratorFactory builds the Orchestrator for a new session.
type OrchestratorFactory func(p enrich.Presenter, w enrich.MapWidget, label string) *enrich.Orchestrator

// Store is a concurrency-safe in-memory registry of live map sessions.
type Store struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*Session

	newOrchestrator OrchestratorFactory
}

// NewStore creates an empty Store.
func NewStore(factory OrchestratorFactory) *Store {
	return &Store{
		data:            make(map[string]*Session),
		newOrchestrator: factory,
	}
}

// Create registers a new session with every field unset.
func (s *Store) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		record:    enrich.NewDisplayRecord(),
		lastSeen:  now,
	}
	sess.orch = s.newOrchestrator(sess, sess, sess.ID)

	s.mu.Lock()
	s.data[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session for id and marks it as seen.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.data[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	sess.touch()
	return sess, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// Sweep removes sessions idle for longer than maxIdle and returns how many
// were removed. In-flight clicks on a removed session still complete.
func (s *Store) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.data {
		if sess.idleSince().Before(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
