// Package store persists shipments and their status history.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ishemalink/internal/shipment/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
)

// InMemory keeps shipments in maps for development and tests.
type InMemory struct {
	mu        sync.RWMutex
	shipments map[id.ShipmentID]*models.Shipment
	tracking  map[string]id.ShipmentID
	logs      map[id.ShipmentID][]models.Log
}

func NewInMemory() *InMemory {
	return &InMemory{
		shipments: make(map[id.ShipmentID]*models.Shipment),
		tracking:  make(map[string]id.ShipmentID),
		logs:      make(map[id.ShipmentID][]models.Log),
	}
}

func (s *InMemory) Create(_ context.Context, sh *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.tracking[sh.TrackingNumber]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *sh
	s.shipments[sh.ID] = &cp
	s.tracking[sh.TrackingNumber] = sh.ID
	return nil
}

// Get returns the shipment only when it is inside scope.
func (s *InMemory) Get(_ context.Context, scope models.Scope, shipmentID id.ShipmentID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[shipmentID]
	if !ok || !scope.Matches(sh) {
		return nil, sentinel.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

// List returns the page of scoped, filtered shipments, newest first.
func (s *InMemory) List(_ context.Context, scope models.Scope, filter models.Filter) (*models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*models.Shipment
	for _, sh := range s.shipments {
		if scope.Matches(sh) && filter.Matches(sh) {
			cp := *sh
			matched = append(matched, &cp)
		}
	}
	// Newest first, ties broken by id as in the Postgres store.
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	page := &models.Page{Total: len(matched)}
	start := filter.Offset()
	if start >= len(matched) {
		page.Shipments = []*models.Shipment{}
		return page, nil
	}
	end := min(start+filter.PageSize, len(matched))
	page.Shipments = matched[start:end]
	return page, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, shipmentID id.ShipmentID, status models.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[shipmentID]
	if !ok {
		return sentinel.ErrNotFound
	}
	sh.Status = status
	sh.UpdatedAt = at
	return nil
}

func (s *InMemory) AppendLog(_ context.Context, entry models.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[entry.ShipmentID]; !ok {
		return sentinel.ErrNotFound
	}
	s.logs[entry.ShipmentID] = append(s.logs[entry.ShipmentID], entry)
	return nil
}

// Logs returns the history oldest first.
func (s *InMemory) Logs(_ context.Context, shipmentID id.ShipmentID) ([]models.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Log, len(s.logs[shipmentID]))
	copy(out, s.logs[shipmentID])
	return out, nil
}
