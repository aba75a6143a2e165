package service

import (
	"ishemalink/internal/shipment/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/requestcontext"
)

// scopeRule maps a role to the shipments its holders may see. Rules are
// checked in order and the first matching role wins.
type scopeRule struct {
	role  id.Role
	scope func(caller requestcontext.Caller) models.Scope
}

var scopeRules = []scopeRule{
	{role: id.RoleGovernmentInspector, scope: func(requestcontext.Caller) models.Scope {
		return models.Scope{Kind: models.ScopeAll}
	}},
	{role: id.RoleAgent, scope: func(c requestcontext.Caller) models.Scope {
		return models.Scope{Kind: models.ScopeSector, Sector: c.AssignedSector}
	}},
	{role: id.RoleDriver, scope: func(c requestcontext.Caller) models.Scope {
		return models.Scope{Kind: models.ScopeDriver, UserID: c.UserID}
	}},
}

// ScopeFor returns the visibility scope of caller. Customers, Admins and any
// role without a rule see only shipments they own.
// This is pure domain logic with no I/O.
func ScopeFor(caller requestcontext.Caller) models.Scope {
	for _, rule := range scopeRules {
		if rule.role == caller.Role {
			return rule.scope(caller)
		}
	}
	return models.Scope{Kind: models.ScopeOwner, UserID: caller.UserID}
}

// canUpdateStatus lists the roles allowed to move a shipment's status.
var canUpdateStatus = map[id.Role]bool{
	id.RoleDriver: true,
	id.RoleAgent:  true,
}
