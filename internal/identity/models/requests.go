package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
)

const minPasswordLength = 8

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	Email          string `json:"email"`
	NationalID     string `json:"national_id"`
	TaxID          string `json:"tax_id"`
	Role           string `json:"role"`
	AssignedSector string `json:"assigned_sector"`

	parsedPhone id.PhoneNumber
	parsedNID   id.NationalID
	parsedRole  id.Role
}

func (r *RegisterRequest) Normalize() {
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.TaxID = strings.TrimSpace(r.TaxID)
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	r.AssignedSector = strings.TrimSpace(r.AssignedSector)
}

// Validate checks every field and reports all failures at once, keyed by field.
func (r *RegisterRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

// ValidateAt is Validate against an explicit clock for the national ID year rule.
func (r *RegisterRequest) ValidateAt(now time.Time) error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	verr := dErrors.New(dErrors.CodeValidation, "invalid registration")

	if phone, err := id.ParsePhoneNumber(r.Phone); err != nil {
		mergeFields(verr, err)
	} else {
		r.parsedPhone = phone
	}

	if len(r.Password) < minPasswordLength {
		verr.WithField("password", "password must be at least 8 characters")
	} else if len(r.Password) > 72 {
		verr.WithField("password", "password must be at most 72 characters")
	}

	if r.Email != "" && (!govalidator.IsEmail(r.Email) || !govalidator.StringLength(r.Email, "3", "254")) {
		verr.WithField("email", "enter a valid email address")
	}

	if r.NationalID != "" {
		if nid, err := id.ParseNationalID(r.NationalID, now); err != nil {
			mergeFields(verr, err)
		} else {
			r.parsedNID = nid
		}
	}

	if r.TaxID != "" && (!govalidator.IsAlphanumeric(r.TaxID) || !govalidator.StringLength(r.TaxID, "9", "20")) {
		verr.WithField("tax_id", "tax ID must be 9 to 20 alphanumeric characters")
	}

	r.parsedRole = id.RoleCustomer
	if r.Role != "" {
		role, err := id.ParseRole(r.Role)
		switch {
		case err != nil:
			mergeFields(verr, err)
		case !role.SelfAssignable():
			verr.WithField("role", "this role is granted by an administrator")
		default:
			r.parsedRole = role
		}
	}
	if r.parsedRole == id.RoleAgent && r.AssignedSector == "" {
		verr.WithField("assigned_sector", "agents must have an assigned sector")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (r *RegisterRequest) ParsedPhone() id.PhoneNumber { return r.parsedPhone }
func (r *RegisterRequest) ParsedNationalID() id.NationalID { return r.parsedNID }
func (r *RegisterRequest) ParsedRole() id.Role { return r.parsedRole }

// AssignRoleRequest is the admin payload for changing a user's role.
type AssignRoleRequest struct {
	Role           string `json:"role"`
	AssignedSector string `json:"assigned_sector"`

	parsedRole id.Role
}

func (r *AssignRoleRequest) Normalize() {
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	r.AssignedSector = strings.TrimSpace(r.AssignedSector)
}

func (r *AssignRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return err
	}
	if role == id.RoleAgent && r.AssignedSector == "" {
		return dErrors.Field("assigned_sector", "agents must have an assigned sector")
	}
	r.parsedRole = role
	return nil
}

func (r *AssignRoleRequest) ParsedRole() id.Role { return r.parsedRole }

func mergeFields(dst *dErrors.Error, err error) {
	if de, ok := dErrors.As(err); ok && len(de.Fields) > 0 {
		for k, v := range de.Fields {
			dst.WithField(k, v)
		}
		return
	}
	dst.WithField("non_field_errors", err.Error())
}

// NationalIDRequest carries a national ID for KYC submission or a format check.
type NationalIDRequest struct {
	NationalID string `json:"national_id"`

	parsed id.NationalID
}

func (r *NationalIDRequest) Normalize() {
	r.NationalID = strings.TrimSpace(r.NationalID)
}

func (r *NationalIDRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

func (r *NationalIDRequest) ValidateAt(now time.Time) error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	nid, err := id.ParseNationalID(r.NationalID, now)
	if err != nil {
		return err
	}
	r.parsed = nid
	return nil
}

func (r *NationalIDRequest) ParsedNationalID() id.NationalID { return r.parsed }
