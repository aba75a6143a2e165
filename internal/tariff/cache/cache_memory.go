package cache

import (
	"context"
	"sync"
	"time"

	"ishemalink/internal/tariff/models"
	"ishemalink/pkg/platform/sentinel"
)

// InMemory is a single-entry cache with TTL expiration.
type InMemory struct {
	mu       sync.RWMutex
	tariffs  []models.Tariff
	storedAt time.Time
	ttl      time.Duration
	present  bool
	now      func() time.Time
}

// Option configures an InMemory cache.
type Option func(*InMemory)

// WithClock replaces the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(c *InMemory) {
		c.now = now
	}
}

func NewInMemory(opts ...Option) *InMemory {
	c := &InMemory{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *InMemory) Get(_ context.Context) ([]models.Tariff, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.present || c.now().Sub(c.storedAt) >= c.ttl {
		return nil, sentinel.ErrNotFound
	}
	return append([]models.Tariff(nil), c.tariffs...), nil
}

func (c *InMemory) Set(_ context.Context, tariffs []models.Tariff, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tariffs = append([]models.Tariff(nil), tariffs...)
	c.storedAt = c.now()
	c.ttl = ttl
	c.present = true
	return nil
}

func (c *InMemory) Delete(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tariffs = nil
	c.present = false
	return nil
}
