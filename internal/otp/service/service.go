package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	idmodels "ishemalink/internal/identity/models"
	"ishemalink/internal/otp/models"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ChallengeStore,UserLookup,Notifier,AuditPublisher
type ChallengeStore interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	Verify(ctx context.Context, key, code string, maxAttempts int) (models.Outcome, error)
}

type UserLookup interface {
	Get(ctx context.Context, userID id.UserID) (*idmodels.User, error)
}

type Notifier interface {
	Send(ctx context.Context, destination, message string) error
}

type AuditPublisher interface {
	Record(ctx context.Context, actor *id.UserID, action audit.Action, detail string) error
}

const defaultTTL = 5 * time.Minute

var codeSpace = big.NewInt(1_000_000)

// Service issues and checks six-digit one-time passcodes delivered by SMS.
type Service struct {
	store       ChallengeStore
	users       UserLookup
	notifier    Notifier
	auditor     AuditPublisher
	ttl         time.Duration
	maxAttempts int
	sendTimeout time.Duration
	logger      *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxAttempts caps failed verifies per challenge. Zero leaves verifies unlimited.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		s.maxAttempts = n
	}
}

func WithSendTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.sendTimeout = d
	}
}

func New(store ChallengeStore, users UserLookup, notifier Notifier, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		store:       store,
		users:       users,
		notifier:    notifier,
		auditor:     auditor,
		ttl:         defaultTTL,
		sendTimeout: 5 * time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestChallenge replaces any live challenge with a fresh code and texts it
// to the user's phone. The code is returned for callers that deliver it
// another way; handlers must not echo it.
func (s *Service) RequestChallenge(ctx context.Context, userID id.UserID) (string, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	code, err := generateCode()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}
	if err := s.store.Put(ctx, models.ChallengeKey(userID), code, s.ttl); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store challenge")
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	msg := fmt.Sprintf("Your IshemaLink verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.notifier.Send(sendCtx, user.Phone.String(), msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send otp",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID.String(),
			"error", err,
		)
	}

	s.recordAudit(ctx, &userID, audit.ActionOTPRequested, "")
	return code, nil
}

// VerifyChallenge reports whether code matches the live challenge. A match
// consumes the challenge. With an attempt cap, an exhausted challenge is
// RateLimited until it expires or a new one is requested.
func (s *Service) VerifyChallenge(ctx context.Context, userID id.UserID, code string) (bool, error) {
	outcome, err := s.store.Verify(ctx, models.ChallengeKey(userID), code, s.maxAttempts)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify challenge")
	}
	switch outcome {
	case models.Matched:
		s.recordAudit(ctx, &userID, audit.ActionOTPVerified, "")
		return true, nil
	case models.Locked:
		s.logger.WarnContext(ctx, "otp attempts exhausted",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID.String(),
		)
		return false, dErrors.New(dErrors.CodeRateLimited, "too many attempts, request a new code")
	default:
		return false, nil
	}
}

func (s *Service) recordAudit(ctx context.Context, actor *id.UserID, action audit.Action, detail string) {
	if err := s.auditor.Record(ctx, actor, action, detail); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit entry",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(action),
			"error", err,
		)
	}
}

// generateCode draws uniformly from 000000-999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
