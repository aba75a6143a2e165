// Package store persists international cargo declarations.
package store

import (
	"context"
	"sort"
	"sync"

	"ishemalink/internal/cargo/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
)

type InMemory struct {
	mu        sync.RWMutex
	cargo     map[id.CargoID]*models.Cargo
	manifests map[string]id.CargoID
}

func NewInMemory() *InMemory {
	return &InMemory{
		cargo:     make(map[id.CargoID]*models.Cargo),
		manifests: make(map[string]id.CargoID),
	}
}

func (s *InMemory) Create(_ context.Context, c *models.Cargo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.manifests[c.ManifestID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *c
	s.cargo[c.ID] = &cp
	s.manifests[c.ManifestID] = c.ID
	return nil
}

// ListByOwner returns the owner's cargo, newest first.
func (s *InMemory) ListByOwner(_ context.Context, owner id.UserID) ([]*models.Cargo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Cargo{}
	for _, c := range s.cargo {
		if c.OwnerID == owner {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
