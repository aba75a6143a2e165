package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ishemalink/internal/cargo/models"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/fieldcipher"
	"ishemalink/pkg/platform/sentinel"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,FieldCipher
type Store interface {
	Create(ctx context.Context, c *models.Cargo) error
	ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Cargo, error)
}

type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Service declares and lists cross-border cargo. Trade documents are sealed
// before storage and opened only for their owner.
type Service struct {
	store  Store
	cipher FieldCipher
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, cipher FieldCipher, opts ...Option) *Service {
	s := &Service{store: store, cipher: cipher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a declaration owned by the caller. The returned cargo carries
// the opened trade documents.
func (s *Service) Create(ctx context.Context, caller requestcontext.Caller, req *models.CreateRequest) (*models.Cargo, error) {
	tin, err := s.cipher.Encrypt(req.TINNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal TIN")
	}
	passport, err := s.cipher.Encrypt(req.PassportNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal passport number")
	}

	c := &models.Cargo{
		ID:             id.CargoID(uuid.New()),
		OwnerID:        caller.UserID,
		ManifestID:     req.ManifestID,
		TINNumber:      tin,
		PassportNumber: passport,
		Destination:    req.Destination,
		WeightKg:       req.Weight(),
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "cargo with this manifest ID already exists").
				WithField("manifest_id", "already declared")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to declare cargo")
	}

	s.logger.InfoContext(ctx, "cargo declared",
		"request_id", requestcontext.RequestID(ctx),
		"cargo_id", c.ID.String(),
		"destination", string(c.Destination),
		"owner_id", caller.UserID.String(),
	)

	out := *c
	out.TINNumber, out.PassportNumber = req.TINNumber, req.PassportNumber
	return &out, nil
}

// List returns the caller's own cargo with trade documents opened.
func (s *Service) List(ctx context.Context, caller requestcontext.Caller) ([]*models.Cargo, error) {
	items, err := s.store.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cargo")
	}
	for _, c := range items {
		c.TINNumber = s.open(ctx, c.ID, c.TINNumber)
		c.PassportNumber = s.open(ctx, c.ID, c.PassportNumber)
	}
	return items, nil
}

func (s *Service) open(ctx context.Context, cargoID id.CargoID, sealed string) string {
	if sealed == "" {
		return ""
	}
	plain, err := s.cipher.Decrypt(sealed)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to open cargo trade document",
			"request_id", requestcontext.RequestID(ctx),
			"cargo_id", cargoID.String(),
			"error", err,
		)
		return fieldcipher.Unavailable
	}
	return plain
}
