package cache

import (
	"context"
	"sync"
	"time"

	appdispatch "github.com/quickcart/backend/internal/application/dispatch"
	"github.com/quickcart/backend/internal/domain/dispatch"
)

// InMemoryOutcomeStore is a map-backed claim outcome store for development
// and tests. Outcomes are scoped to a single process, so retried claims are
// only answered from memory when they land on the same instance.
type InMemoryOutcomeStore struct {
	mu        sync.RWMutex
	entries   map[string]outcomeEntry
	stopChan  chan struct{}
	closeOnce sync.Once
}

type outcomeEntry struct {
	outcome   dispatch.ClaimOutcome
	expiresAt time.Time
}

// NewInMemoryOutcomeStore creates an in-memory claim outcome store and starts
// a background cleanup goroutine
func NewInMemoryOutcomeStore() *InMemoryOutcomeStore {
	s := &InMemoryOutcomeStore{
		entries:  make(map[string]outcomeEntry),
		stopChan: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Remember stores a decided outcome with a TTL. The first recorded outcome
// for a key wins; later writes for the same key are ignored.
func (s *InMemoryOutcomeStore) Remember(_ context.Context, key string, outcome dispatch.ClaimOutcome, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok && time.Now().Before(existing.expiresAt) {
		return nil
	}
	s.entries[key] = outcomeEntry{
		outcome:   outcome,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Lookup returns the recorded outcome for a claim key, if any
func (s *InMemoryOutcomeStore) Lookup(_ context.Context, key string) (dispatch.ClaimOutcome, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.outcome, true, nil
}

// Size returns the number of entries currently stored, including entries
// that have expired but not yet been swept
func (s *InMemoryOutcomeStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the background cleanup goroutine
func (s *InMemoryOutcomeStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	return nil
}

func (s *InMemoryOutcomeStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *InMemoryOutcomeStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ appdispatch.ClaimOutcomeStore = (*InMemoryOutcomeStore)(nil)
