package activities

import (
	"context"
	"sync"
)

// MemoryStore keeps activities in process memory. State is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*Activity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byName: make(map[string]*Activity)}
}

func (s *MemoryStore) Seed(_ context.Context, seed []Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range seed {
		if _, exists := s.byName[a.Name]; exists {
			continue
		}
		c := a.Clone()
		s.byName[a.Name] = &c
		s.order = append(s.order, a.Name)
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Activity, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name].Clone())
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (Activity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byName[name]
	if !ok {
		return Activity{}, false, nil
	}
	return a.Clone(), true, nil
}

func (s *MemoryStore) AppendParticipant(_ context.Context, name, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byName[name]
	if !ok {
		return ErrUnknownActivity
	}
	a.Participants = append(a.Participants, email)
	return nil
}
