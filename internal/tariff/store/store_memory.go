package store

import (
	"context"
	"sync"

	"ishemalink/internal/tariff/models"
)

// InMemory serves a fixed tariff table for development and tests.
type InMemory struct {
	mu      sync.RWMutex
	tariffs []models.Tariff
	reads   int
}

func NewInMemory(tariffs []models.Tariff) *InMemory {
	return &InMemory{tariffs: append([]models.Tariff(nil), tariffs...)}
}

func (s *InMemory) List(_ context.Context) ([]models.Tariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return append([]models.Tariff(nil), s.tariffs...), nil
}

// Reads reports how many times List hit the table.
func (s *InMemory) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}
