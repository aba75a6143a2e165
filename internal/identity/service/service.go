package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ishemalink/internal/identity/models"
	"ishemalink/internal/platform/metrics"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/platform/fieldcipher"
	"ishemalink/pkg/platform/sentinel"
	txcontext "ishemalink/pkg/platform/tx"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,AuditPublisher,FieldCipher
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

type AuditPublisher interface {
	Record(ctx context.Context, actor *id.UserID, action audit.Action, detail string) error
}

// FieldCipher opens sealed PII for the export path.
type FieldCipher interface {
	Decrypt(ciphertext string) (string, error)
}

// Service owns the identity lifecycle: registration, KYC, export, forget-me
// and role assignment.
type Service struct {
	users   UserStore
	auditor AuditPublisher
	cipher  FieldCipher
	tx      txcontext.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	// dummyHash keeps login timing flat for unknown usernames.
	dummyHash []byte
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx makes KYC and forget-me write the user row and its audit entry in one unit.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func New(users UserStore, auditor AuditPublisher, cipher FieldCipher, opts ...Option) *Service {
	s := &Service{
		users:   users,
		auditor: auditor,
		cipher:  cipher,
		tx:      txcontext.Passthrough{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ishemalink-timing-pad"), bcrypt.DefaultCost)
	return s
}

// Register creates a user from a validated request. The username is the phone number.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	phone := req.ParsedPhone()
	user := &models.User{
		ID:           id.UserID(uuid.New()),
		Username:     phone.String(),
		Phone:        phone,
		Email:        req.Email,
		Role:         req.ParsedRole(),
		NationalID:   req.ParsedNationalID().String(),
		TaxID:        req.TaxID,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.Role == id.RoleAgent {
		user.AssignedSector = req.AssignedSector
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a user with this phone number already exists").
				WithField("phone", "already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.recordAudit(ctx, &user.ID, audit.ActionUserRegistered, "role "+user.Role.String())
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	s.logger.InfoContext(ctx, "user registered",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID.String(),
		"role", user.Role.String(),
	)
	return user, nil
}

// CheckCredentials returns the user for a matching username and password. Every
// failure reports the same generic error so callers cannot probe for accounts.
func (s *Service) CheckCredentials(ctx context.Context, username, password string) (*models.User, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// SubmitIdentityDocument verifies the caller with a validated national ID.
// The audit detail carries only the last four digits.
func (s *Service) SubmitIdentityDocument(ctx context.Context, userID id.UserID, nationalID id.NationalID) (*models.User, error) {
	var user *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.Get(ctx, userID)
		if err != nil {
			return err
		}
		user.ApplyVerification(nationalID, requestcontext.Now(ctx))
		if err := s.users.Update(ctx, user); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification")
		}
		return s.auditor.Record(ctx, &user.ID, audit.ActionKYCVerified, "NID ending "+nationalID.LastFour())
	})
	if err != nil {
		return nil, asDomain(err, "failed to verify identity")
	}
	s.logger.InfoContext(ctx, "identity verified",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
	)
	return user, nil
}

// ExportOwnData returns the caller's record with PII decrypted. A field that
// cannot be decrypted is replaced with fieldcipher.Unavailable.
func (s *Service) ExportOwnData(ctx context.Context, userID id.UserID) (*models.DataExport, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	export := &models.DataExport{
		ID:             user.ID,
		Username:       user.Username,
		Phone:          user.Phone.String(),
		Email:          user.Email,
		Role:           user.Role,
		IsVerified:     user.IsVerified,
		NationalID:     s.open(ctx, user.ID, "national_id", user.NationalID),
		TaxID:          s.open(ctx, user.ID, "tax_id", user.TaxID),
		AssignedSector: user.AssignedSector,
		CreatedAt:      user.CreatedAt,
		ExportedAt:     requestcontext.Now(ctx),
	}

	if err := s.auditor.Record(ctx, &user.ID, audit.ActionDataExport, "User downloaded personal data"); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record export")
	}
	return export, nil
}

func (s *Service) open(ctx context.Context, userID id.UserID, field, sealed string) string {
	plain, err := s.cipher.Decrypt(sealed)
	if err == nil {
		return plain
	}
	s.logger.ErrorContext(ctx, "failed to decrypt personal data field",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"field", field,
		"error", err,
	)
	return fieldcipher.Unavailable
}

// ForgetMe anonymizes the caller in place. Repeating it leaves the stored
// state unchanged but still records the request.
func (s *Service) ForgetMe(ctx context.Context, userID id.UserID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.Get(ctx, userID)
		if err != nil {
			return err
		}
		if user.ApplyForget(requestcontext.Now(ctx)) {
			if err := s.users.Update(ctx, user); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to anonymize user")
			}
		}
		return s.auditor.Record(ctx, &user.ID, audit.ActionRightToBeForgotten, "User anonymized")
	})
	if err != nil {
		return asDomain(err, "failed to anonymize user")
	}
	s.logger.InfoContext(ctx, "user anonymized",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
	)
	return nil
}

// AssignRole changes another user's role. Admin only; enforced at the route.
func (s *Service) AssignRole(ctx context.Context, actor, target id.UserID, role id.Role, sector string) (*models.User, error) {
	if role == id.RoleAgent && sector == "" {
		return nil, dErrors.Field("assigned_sector", "agents must have an assigned sector")
	}
	var user *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.Get(ctx, target)
		if err != nil {
			return err
		}
		user.ApplyRole(role, sector, requestcontext.Now(ctx))
		if err := s.users.Update(ctx, user); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign role")
		}
		return s.auditor.Record(ctx, &actor, audit.ActionRoleAssigned, "user "+target.String()+" -> "+role.String())
	})
	if err != nil {
		return nil, asDomain(err, "failed to assign role")
	}
	return user, nil
}

// recordAudit is for entries whose loss must not fail the request.
func (s *Service) recordAudit(ctx context.Context, actor *id.UserID, action audit.Action, detail string) {
	if err := s.auditor.Record(ctx, actor, action, detail); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit entry",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(action),
			"error", err,
		)
	}
}

func asDomain(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
