package models

import (
	"fmt"
	"time"

	id "ishemalink/pkg/domain"
)

// User is the identity aggregate.
//
// Invariants:
//   - Username equals Phone and is unique
//   - NationalID and TaxID hold ciphertext once persisted; stores seal them on
//     every write
//   - Users are never hard-deleted; Forget anonymizes in place
type User struct {
	ID             id.UserID      `json:"id"`
	Username       string         `json:"username"`
	Phone          id.PhoneNumber `json:"phone"`
	Email          string         `json:"email,omitempty"`
	Role           id.Role        `json:"role"`
	IsVerified     bool           `json:"is_verified"`
	NationalID     string         `json:"-"`
	TaxID          string         `json:"-"`
	AssignedSector string         `json:"assigned_sector,omitempty"`
	PasswordHash   string         `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AnonymizedEmail is the deterministic placeholder that replaces a forgotten email.
func (u *User) AnonymizedEmail() string {
	return fmt.Sprintf("deleted-%s@anonymized.invalid", u.ID)
}

// ApplyVerification records a validated national ID. The value is sealed by
// the store on write.
func (u *User) ApplyVerification(nationalID id.NationalID, now time.Time) {
	u.NationalID = nationalID.String()
	u.IsVerified = true
	u.UpdatedAt = now
}

// IsForgotten reports whether the user is already in the anonymized end state.
func (u *User) IsForgotten() bool {
	return u.Email == u.AnonymizedEmail() &&
		u.NationalID == "" &&
		u.TaxID == "" &&
		!u.IsVerified
}

// ApplyForget clears personal data in place. It returns false when the user
// was already anonymized, leaving every field (UpdatedAt included) untouched.
func (u *User) ApplyForget(now time.Time) bool {
	if u.IsForgotten() {
		return false
	}
	u.Email = u.AnonymizedEmail()
	u.NationalID = ""
	u.TaxID = ""
	u.IsVerified = false
	u.UpdatedAt = now
	return true
}

// ApplyRole changes the role and sector. Only Agents keep a sector.
func (u *User) ApplyRole(role id.Role, sector string, now time.Time) {
	u.Role = role
	if role == id.RoleAgent {
		u.AssignedSector = sector
	} else {
		u.AssignedSector = ""
	}
	u.UpdatedAt = now
}

// DataExport is everything a user may retrieve about themselves, decrypted.
type DataExport struct {
	ID             id.UserID `json:"id"`
	Username       string    `json:"username"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Role           id.Role   `json:"role"`
	IsVerified     bool      `json:"is_verified"`
	NationalID     string    `json:"national_id"`
	TaxID          string    `json:"tax_id"`
	AssignedSector string    `json:"assigned_sector"`
	CreatedAt      time.Time `json:"created_at"`
	ExportedAt     time.Time `json:"exported_at"`
}
