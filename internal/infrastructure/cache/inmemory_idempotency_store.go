package cache

import (
	"context"
	"sync"
	"time"

	"github.com/profilegateway/backend/internal/domain/shared"
)

// entry is a reserved or completed key with its expiration
type entry struct {
	expiresAt time.Time
	response  *shared.StoredResponse // nil while in flight
}

// InMemoryIdempotencyStore implements IdempotencyStore using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
// It starts a background goroutine to clean up expired entries
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(5 * time.Minute)

	return store
}

// Reserve claims key if it is free or expired
func (s *InMemoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, exists := s.entries[key]; exists && now.Before(e.expiresAt) {
		return false, nil
	}

	s.entries[key] = entry{expiresAt: now.Add(ttl)}
	return true, nil
}

// Load returns the completed response for key, if any
func (s *InMemoryIdempotencyStore) Load(ctx context.Context, key string) (*shared.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || !s.now().Before(e.expiresAt) || e.response == nil {
		return nil, nil
	}

	resp := *e.response
	resp.Body = append([]byte(nil), e.response.Body...)
	return &resp, nil
}

// Save stores resp under key for ttl
func (s *InMemoryIdempotencyStore) Save(ctx context.Context, key string, resp shared.StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp.Body = append([]byte(nil), resp.Body...)
	s.entries[key] = entry{
		expiresAt: s.now().Add(ttl),
		response:  &resp,
	}
	return nil
}

// Release drops key unless it already holds a completed response
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[key]; exists && e.response == nil {
		delete(s.entries, key)
	}
	return nil
}

// Ping always succeeds for the in-memory store
func (s *InMemoryIdempotencyStore) Ping(ctx context.Context) error {
	return nil
}

// Name returns "memory"
func (s *InMemoryIdempotencyStore) Name() string {
	return "memory"
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryIdempotencyStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
