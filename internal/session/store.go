package session

import (
	"sync"
	"time"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
)

// Entry is the latest load of one session
type Entry struct {
	ResultSet *phewas.ResultSet
	Report    *phewas.LoadReport
	UpdatedAt time.Time
}

// Store keeps one result set per session in memory. A new load replaces the
// previous entry wholesale.
type Store struct {
	mu      sync.RWMutex
	entries map[core.SessionID]*Entry
	now     func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		entries: make(map[core.SessionID]*Entry),
		now:     time.Now,
	}
}

// Put replaces the session's result set
func (s *Store) Put(id core.SessionID, rs *phewas.ResultSet, report *phewas.LoadReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &Entry{ResultSet: rs, Report: report, UpdatedAt: s.now()}
}

// Get returns the session's entry or core.ErrResultSetNotFound
func (s *Store) Get(id core.SessionID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, core.ErrResultSetNotFound
	}
	return e, nil
}

// Delete forgets a session
func (s *Store) Delete(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CleanupExpired drops sessions not updated within olderThan and returns how many went
func (s *Store) CleanupExpired(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for id, e := range s.entries {
		if e.UpdatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
