package domain

import dErrors "ishemalink/pkg/domain-errors"

// Role is the single authorization attribute of an identity.
// Invariant: the value must be one of the roles declared below; roles are
// mutually exclusive per identity.
type Role string

const (
	RoleCustomer            Role = "CUSTOMER"
	RoleDriver              Role = "DRIVER"
	RoleAgent               Role = "AGENT"
	RoleGovernmentInspector Role = "GOV"
	RoleAdmin               Role = "ADMIN"
)

var roleLabels = map[Role]string{
	RoleCustomer:            "Customer",
	RoleDriver:              "Driver",
	RoleAgent:               "Sector Agent",
	RoleGovernmentInspector: "Government Inspector",
	RoleAdmin:               "Admin",
}

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleCustomer, RoleDriver, RoleAgent, RoleGovernmentInspector, RoleAdmin}
}

// ParseRole constructs a Role from external input.
//
// Errors: returns a validation error naming the "role" field when the value is
// unknown.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.Field("role", "unknown role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label is the human-readable role name.
func (r Role) Label() string {
	return roleLabels[r]
}

// SelfAssignable reports whether a caller may pick this role at registration.
// Admin and GovernmentInspector are granted by an admin only.
func (r Role) SelfAssignable() bool {
	return r == RoleCustomer || r == RoleDriver || r == RoleAgent
}

func (r Role) String() string {
	return string(r)
}
