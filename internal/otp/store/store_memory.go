// Package store keeps one-time passcodes in an expiring key-value cache.
package store

import (
	"context"
	"sync"
	"time"

	"ishemalink/internal/otp/models"
)

type entry struct {
	code      string
	failures  int
	expiresAt time.Time
}

// InMemory is a process-local challenge store for development and tests.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]*entry), now: time.Now}
}

// Put stores code under key, replacing any live challenge and its failure count.
func (s *InMemory) Put(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

// Verify consumes the challenge when code matches. maxAttempts <= 0 disables
// failure counting.
func (s *InMemory) Verify(_ context.Context, key, code string, maxAttempts int) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return models.Mismatch, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return models.Mismatch, nil
	}
	if maxAttempts > 0 && e.failures >= maxAttempts {
		return models.Locked, nil
	}
	if e.code == code {
		delete(s.entries, key)
		return models.Matched, nil
	}
	if maxAttempts > 0 {
		e.failures++
	}
	return models.Mismatch, nil
}
