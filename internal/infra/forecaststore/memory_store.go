package forecaststore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paceline/paceline/internal/domain/weather"
)

// MemoryStore is an in-memory forecast cache used for tests/dev. The
// upsert takes the write lock for the full read-modify-write, so two
// racing refreshes for the same (location, date) converge to one entry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]weather.CacheEntry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]weather.CacheEntry)}
}

// Get implements weather.ForecastStore.
func (s *MemoryStore) Get(_ context.Context, location string, date time.Time) (weather.CacheEntry, bool, error) {
	key := entryKey(location, date)
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return weather.CacheEntry{}, false, nil
	}
	if !entry.Fresh(time.Now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return weather.CacheEntry{}, false, nil
	}
	return entry, true, nil
}

// Upsert implements weather.ForecastStore. Last writer wins; both
// writers hold equivalent fresh data.
func (s *MemoryStore) Upsert(_ context.Context, entry weather.CacheEntry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryKey(entry.Day.Location, entry.Day.Date)] = entry
	return nil
}

// Len reports the number of live entries. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func entryKey(location string, date time.Time) string {
	return fmt.Sprintf("%s:%s", location, date.Format("2006-01-02"))
}

var _ weather.ForecastStore = (*MemoryStore)(nil)
