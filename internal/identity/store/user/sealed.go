package user

import (
	"context"
	"fmt"

	"ishemalink/internal/identity/models"
	id "ishemalink/pkg/domain"
)

// Store is the persistence contract the sealing layer wraps.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// FieldCipher seals PII values. Encrypt must be a no-op on ciphertext.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
}

// Sealed encrypts NationalID and TaxID on every write before delegating.
// Reads return ciphertext; decryption happens only in the export path.
type Sealed struct {
	inner  Store
	cipher FieldCipher
}

func NewSealed(inner Store, cipher FieldCipher) *Sealed {
	return &Sealed{inner: inner, cipher: cipher}
}

func (s *Sealed) Create(ctx context.Context, u *models.User) error {
	sealed, err := s.seal(u)
	if err != nil {
		return err
	}
	return s.inner.Create(ctx, sealed)
}

func (s *Sealed) Update(ctx context.Context, u *models.User) error {
	sealed, err := s.seal(u)
	if err != nil {
		return err
	}
	return s.inner.Update(ctx, sealed)
}

func (s *Sealed) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.inner.FindByID(ctx, userID)
}

func (s *Sealed) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.inner.FindByUsername(ctx, username)
}

// seal returns a copy with PII encrypted and writes the ciphertext back to u
// so the caller never holds cleartext after a successful write.
func (s *Sealed) seal(u *models.User) (*models.User, error) {
	nid, err := s.cipher.Encrypt(u.NationalID)
	if err != nil {
		return nil, fmt.Errorf("seal national id: %w", err)
	}
	tin, err := s.cipher.Encrypt(u.TaxID)
	if err != nil {
		return nil, fmt.Errorf("seal tax id: %w", err)
	}
	u.NationalID, u.TaxID = nid, tin
	cp := *u
	return &cp, nil
}
