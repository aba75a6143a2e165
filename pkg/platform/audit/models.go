package audit

import (
	"context"
	"time"

	id "ishemalink/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers data-subject rights and identity verification.
	// These require tamper-proof storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication and authorization changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Action is the tag recorded on every entry.
type Action string

const (
	// Privacy and identity
	ActionKYCVerified        Action = "KYC_VERIFIED"
	ActionDataExport         Action = "DATA_EXPORT"
	ActionRightToBeForgotten Action = "RIGHT_TO_BE_FORGOTTEN"
	ActionUserRegistered     Action = "USER_REGISTERED"
	ActionOTPRequested       Action = "OTP_REQUESTED"
	ActionOTPVerified        Action = "OTP_VERIFIED"

	// Access control
	ActionRoleAssigned Action = "ROLE_ASSIGNED"
	ActionLoginFailed  Action = "LOGIN_FAILED"
	ActionLogout       Action = "LOGOUT"

	// Logistics
	ActionShipmentStatusChanged Action = "SHIPMENT_STATUS_CHANGED"
	ActionTariffCacheCleared    Action = "TARIFF_CACHE_CLEARED"
)

var actionCategories = map[Action]EventCategory{
	ActionKYCVerified:        CategoryCompliance,
	ActionDataExport:         CategoryCompliance,
	ActionRightToBeForgotten: CategoryCompliance,
	ActionUserRegistered:     CategoryCompliance,

	ActionRoleAssigned: CategorySecurity,
	ActionLoginFailed:  CategorySecurity,
	ActionLogout:       CategorySecurity,
	ActionOTPVerified:  CategorySecurity,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one append-only audit entry.
//
// Invariants:
//   - ActorID is nil when the actor is unknown or anonymous; entries outlive
//     the identity they reference
//   - Detail never holds full PII; callers pass fragments such as the last four
//     digits of a national ID
type Event struct {
	ID        id.AuditID
	ActorID   *id.UserID
	Action    Action
	IP        string
	Detail    string
	RequestID string
	CreatedAt time.Time
}

// Store persists audit entries. It exposes no update or delete operation.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListByActor(ctx context.Context, actor id.UserID) ([]Event, error)
}
