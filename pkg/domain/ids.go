package domain

import (
	"github.com/google/uuid"

	dErrors "ishemalink/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so the compiler keeps a ShipmentID
// from being passed where a UserID is expected.
type (
	UserID     uuid.UUID
	SessionID  uuid.UUID
	ShipmentID uuid.UUID
	CargoID    uuid.UUID
	AuditID    uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id SessionID) String() string  { return uuid.UUID(id).String() }
func (id ShipmentID) String() string { return uuid.UUID(id).String() }
func (id CargoID) String() string    { return uuid.UUID(id).String() }
func (id AuditID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ShipmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs render as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ShipmentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id CargoID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id AuditID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *ShipmentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseUserID parses a non-nil user identifier from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

// ParseSessionID parses a non-nil session identifier from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	return SessionID(u), err
}

// ParseShipmentID parses a non-nil shipment identifier from external input.
func ParseShipmentID(s string) (ShipmentID, error) {
	u, err := parseUUID(s, "shipment ID")
	return ShipmentID(u), err
}
