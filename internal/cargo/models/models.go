package models

import (
	"time"

	id "ishemalink/pkg/domain"
)

// Destination is an EAC trade partner country code.
type Destination string

const (
	DestinationUganda   Destination = "UG"
	DestinationKenya    Destination = "KE"
	DestinationTanzania Destination = "TZ"
	DestinationDRC      Destination = "CD"
)

var destinationNames = map[Destination]string{
	DestinationUganda:   "Uganda",
	DestinationKenya:    "Kenya",
	DestinationTanzania: "Tanzania",
	DestinationDRC:      "DRC",
}

func (d Destination) IsValid() bool {
	_, ok := destinationNames[d]
	return ok
}

func (d Destination) Name() string {
	return destinationNames[d]
}

// RequiresTIN reports whether the destination's customs need a trade TIN.
func (d Destination) RequiresTIN() bool {
	return d == DestinationKenya
}

// Cargo is a cross-border consignment declared under a customs manifest.
//
// Invariants:
//   - ManifestID is unique across all cargo
//   - TINNumber and PassportNumber hold ciphertext once persisted
//   - IsCustomsCleared is false at creation and never set by the owner
type Cargo struct {
	ID               id.CargoID
	OwnerID          id.UserID
	ManifestID       string
	TINNumber        string
	PassportNumber   string
	Destination      Destination
	WeightKg         string
	IsCustomsCleared bool
	CreatedAt        time.Time
}
