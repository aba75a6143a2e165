package models

import (
	"strings"
	"time"

	id "ishemalink/pkg/domain"
)

// Status is the delivery state of a domestic shipment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusFailed    Status = "FAILED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

// DefaultLocation is recorded when a status update names no location.
const DefaultLocation = "Unknown Location"

// Shipment is a package moving within Rwanda.
//
// Invariants:
//   - TrackingNumber is "RW-" followed by 8 uppercase alphanumerics and unique
//   - CargoValue holds ciphertext once persisted
type Shipment struct {
	ID             id.ShipmentID
	TrackingNumber string
	OwnerID        id.UserID
	DriverID       *id.UserID
	Origin         string
	Destination    string
	Sector         string
	CargoValue     string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Log is one entry in a shipment's status history.
type Log struct {
	ShipmentID id.ShipmentID
	Status     Status
	Location   string
	CreatedAt  time.Time
}

// ScopeKind names the column a visibility scope constrains.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeSector
	ScopeDriver
	ScopeOwner
)

// Scope bounds which shipments a caller may see or touch.
type Scope struct {
	Kind   ScopeKind
	Sector string
	UserID id.UserID
}

// Matches reports whether sh is visible under the scope.
func (s Scope) Matches(sh *Shipment) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeSector:
		return sh.Sector == s.Sector
	case ScopeDriver:
		return sh.DriverID != nil && *sh.DriverID == s.UserID
	case ScopeOwner:
		return sh.OwnerID == s.UserID
	}
	return false
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter narrows a list. Empty fields do not constrain.
type Filter struct {
	Status      Status
	Destination string
	Search      string
	Page        int
	PageSize    int
}

// Offset is the zero-based index of the first result of the page.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Matches applies status, destination and search the same way the SQL store does.
func (f Filter) Matches(sh *Shipment) bool {
	if f.Status != "" && sh.Status != f.Status {
		return false
	}
	if f.Destination != "" && !containsFold(sh.Destination, f.Destination) {
		return false
	}
	if f.Search != "" &&
		!containsFold(sh.TrackingNumber, f.Search) &&
		!containsFold(sh.Origin, f.Search) &&
		!containsFold(sh.Destination, f.Search) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Page is one page of a list result.
type Page struct {
	Total     int
	Shipments []*Shipment
}
