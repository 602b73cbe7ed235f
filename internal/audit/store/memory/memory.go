// Package memory is an in-memory audit store for tests and local runs.
package memory

import (
	"context"
	"sync"

	"vigil/internal/audit"
)

type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListBySubject(_ context.Context, subjectType, subjectID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []audit.Event
	for _, event := range s.events {
		if event.SubjectType == subjectType && event.SubjectID == subjectID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// All returns every recorded event, for test assertions.
func (s *Store) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events...)
}
