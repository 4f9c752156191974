package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/fleetvoice/internal/models"
)

// Entry is one cached result and when it was stored.
type Entry struct {
	Result    models.LookupResult `json:"result"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Store holds the latest result per entity. Writes replace the whole entry
// so readers never observe a partial value; the last write wins.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get returns the entry for entityID, or false if it was never populated.
func (s *Store) Get(entityID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entityID]
	return e, ok
}

// Set stores result for entityID.
func (s *Store) Set(entityID string, result models.LookupResult) {
	entry := Entry{Result: result, UpdatedAt: s.now()}
	s.mu.Lock()
	s.entries[entityID] = entry
	s.mu.Unlock()
}

// Len returns the number of populated entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot copies all entries, keyed and sorted by entity id.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Result.EntityID < out[j].Result.EntityID })
	return out
}

// Fresh returns the cached text for entityID when a Found result exists and
// is not older than staleAfter. A zero staleAfter never expires.
func (s *Store) Fresh(entityID string, staleAfter time.Duration) (string, bool) {
	e, ok := s.Get(entityID)
	if !ok || !e.Result.IsFound() {
		return "", false
	}
	if staleAfter > 0 && s.now().Sub(e.UpdatedAt) > staleAfter {
		return "", false
	}
	return e.Result.Text, true
}
