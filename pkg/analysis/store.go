package analysis

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the in-memory registry of completed passes, keyed by pass id.
// It holds at most max contexts and evicts the oldest when full.
type Store struct {
	mu    sync.RWMutex
	max   int
	order []uuid.UUID
	byID  map[uuid.UUID]*Context
}

// NewStore creates a registry bounded to max contexts. Non-positive max
// keeps a single context.
func NewStore(max int) *Store {
	if max <= 0 {
		max = 1
	}
	return &Store{max: max, byID: make(map[uuid.UUID]*Context)}
}

// Put registers a completed pass, evicting the oldest beyond capacity
func (s *Store) Put(actx *Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[actx.PassID()] = actx
	s.order = append(s.order, actx.PassID())
	for len(s.order) > s.max {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, evicted)
	}
}

// Get looks a pass up by its id string
func (s *Store) Get(id string) (*Context, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	actx, ok := s.byID[parsed]
	return actx, ok
}

// Latest returns the most recently registered pass
func (s *Store) Latest() (*Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, false
	}
	return s.byID[s.order[len(s.order)-1]], true
}

// Len reports how many contexts are currently held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// IDs returns the held pass ids, oldest first
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	for i, id := range s.order {
		out[i] = id.String()
	}
	return out
}
