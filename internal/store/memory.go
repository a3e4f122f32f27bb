package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrNotFound is returned when no lookups are recorded for a given city.
	ErrNotFound = errors.New("no lookups recorded for city")
)

// LookupHistory holds a time-ordered list of observations for a city.
type LookupHistory struct {
	Observations []weather.Observation
}

// MemoryStore is a concurrency-safe in-memory history of served lookups.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized city name, value: history
	data map[string]*LookupHistory

	// retention configuration
	maxHistory int           // max number of observations per city
	maxAge     time.Duration // optional max age for observations

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*LookupHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends an observation for a city and enforces retention.
func (s *MemoryStore) Save(city string, obs weather.Observation) {
	key := weather.CityKey(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &LookupHistory{}
		s.data[key] = history
	}

	history.Observations = append(history.Observations, obs)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Observations) > s.maxHistory {
		over := len(history.Observations) - s.maxHistory
		history.Observations = history.Observations[over:]
	}

	s.pruneLocked(key, history, s.now())
}

// Prune drops observations older than the max age across all cities and
// returns how many were removed.
func (s *MemoryStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, history := range s.data {
		removed += s.pruneLocked(key, history, now)
	}
	return removed
}

func (s *MemoryStore) pruneLocked(key string, history *LookupHistory, now time.Time) int {
	if s.maxAge <= 0 {
		return 0
	}

	cutoff := now.Add(-s.maxAge)
	i := 0
	for ; i < len(history.Observations); i++ {
		if !history.Observations[i].ObservedAt.Before(cutoff) {
			break
		}
	}
	if i == 0 {
		return 0
	}

	history.Observations = history.Observations[i:]
	if len(history.Observations) == 0 {
		delete(s.data, key)
	}
	return i
}

// GetLatest returns the most recent observation for a city.
func (s *MemoryStore) GetLatest(city string) (weather.Observation, error) {
	key := weather.CityKey(city)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Observations) == 0 {
		return weather.Observation{}, ErrNotFound
	}
	return history.Observations[len(history.Observations)-1], nil
}

// GetRange returns all observations for a city between from and to (inclusive).
func (s *MemoryStore) GetRange(city string, from, to time.Time) ([]weather.Observation, error) {
	key := weather.CityKey(city)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Observations) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Observation
	for _, obs := range history.Observations {
		if !obs.ObservedAt.Before(from) && !obs.ObservedAt.After(to) {
			result = append(result, obs)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
