package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	idmodels "ishemalink/internal/identity/models"
	"ishemalink/internal/shipment/models"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/platform/fieldcipher"
	"ishemalink/pkg/platform/sentinel"
	txcontext "ishemalink/pkg/platform/tx"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,UserLookup,Notifier,AuditPublisher,FieldCipher
type Store interface {
	Create(ctx context.Context, sh *models.Shipment) error
	Get(ctx context.Context, scope models.Scope, shipmentID id.ShipmentID) (*models.Shipment, error)
	List(ctx context.Context, scope models.Scope, filter models.Filter) (*models.Page, error)
	UpdateStatus(ctx context.Context, shipmentID id.ShipmentID, status models.Status, at time.Time) error
	AppendLog(ctx context.Context, entry models.Log) error
	Logs(ctx context.Context, shipmentID id.ShipmentID) ([]models.Log, error)
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

type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

const (
	trackingPrefix   = "RW-"
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingLength   = 8
	createAttempts   = 3
)

// Service creates, lists and advances domestic shipments. Every read and
// write is bounded by the caller's role scope.
type Service struct {
	store         Store
	users         UserLookup
	notifier      Notifier
	auditor       AuditPublisher
	cipher        FieldCipher
	tx            txcontext.Runner
	notifyTimeout time.Duration
	logger        *slog.Logger
	tracer        trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTx makes the status write and its log entry one unit.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// WithNotifyTimeout bounds how long a status update waits on the SMS channel.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

func New(store Store, users UserLookup, notifier Notifier, auditor AuditPublisher, cipher FieldCipher, opts ...Option) *Service {
	s := &Service{
		store:         store,
		users:         users,
		notifier:      notifier,
		auditor:       auditor,
		cipher:        cipher,
		tx:            txcontext.Passthrough{},
		notifyTimeout: 5 * time.Second,
		logger:        slog.Default(),
		tracer:        otel.Tracer("ishemalink/shipment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books a shipment owned by the caller. The cargo value is sealed
// before it reaches the store.
func (s *Service) Create(ctx context.Context, caller requestcontext.Caller, req *models.CreateRequest) (*models.Shipment, error) {
	sealed, err := s.cipher.Encrypt(req.CargoValue)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal cargo value")
	}
	now := requestcontext.Now(ctx)
	sh := &models.Shipment{
		ID:          id.ShipmentID(uuid.New()),
		OwnerID:     caller.UserID,
		DriverID:    req.ParsedDriverID(),
		Origin:      req.Origin,
		Destination: req.Destination,
		Sector:      req.Sector,
		CargoValue:  sealed,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		sh.TrackingNumber, err = newTrackingNumber()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate tracking number")
		}
		err = s.store.Create(ctx, sh)
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) || attempt == createAttempts {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create shipment")
		}
	}

	s.logger.InfoContext(ctx, "shipment created",
		"request_id", requestcontext.RequestID(ctx),
		"shipment_id", sh.ID.String(),
		"tracking_number", sh.TrackingNumber,
		"owner_id", caller.UserID.String(),
	)
	return sh, nil
}

// List returns the caller's visible shipments, newest first.
func (s *Service) List(ctx context.Context, caller requestcontext.Caller, filter models.Filter) (*models.Page, error) {
	page, err := s.store.List(ctx, ScopeFor(caller), filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shipments")
	}
	return page, nil
}

// Manifests lists every shipment regardless of owner. Callers gate it to
// government inspectors.
func (s *Service) Manifests(ctx context.Context, filter models.Filter) (*models.Page, error) {
	page, err := s.store.List(ctx, models.Scope{Kind: models.ScopeAll}, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list manifests")
	}
	return page, nil
}

// Detail is a shipment with its history and, for the owner, the opened cargo value.
type Detail struct {
	Shipment   *models.Shipment
	Logs       []models.Log
	CargoValue string
}

func (s *Service) Get(ctx context.Context, caller requestcontext.Caller, shipmentID id.ShipmentID) (*Detail, error) {
	sh, err := s.store.Get(ctx, ScopeFor(caller), shipmentID)
	if err != nil {
		return nil, asDomain(err, "failed to load shipment")
	}
	logs, err := s.store.Logs(ctx, shipmentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load shipment history")
	}
	detail := &Detail{Shipment: sh, Logs: logs}
	if sh.OwnerID == caller.UserID && sh.CargoValue != "" {
		plain, err := s.cipher.Decrypt(sh.CargoValue)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to open cargo value",
				"request_id", requestcontext.RequestID(ctx),
				"shipment_id", sh.ID.String(),
				"error", err,
			)
			plain = fieldcipher.Unavailable
		}
		detail.CargoValue = plain
	}
	return detail, nil
}

// UpdateStatus moves a shipment to a new status and records the history
// entry in the same unit. The owner is then notified by SMS; a failed or
// slow notification is logged and never undoes the update.
func (s *Service) UpdateStatus(ctx context.Context, caller requestcontext.Caller, shipmentID id.ShipmentID, req *models.UpdateStatusRequest) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.UpdateStatus",
		trace.WithAttributes(
			attribute.String("shipment.id", shipmentID.String()),
			attribute.String("shipment.status", req.Status),
			attribute.String("caller.role", caller.Role.String()),
		))
	defer span.End()

	if !canUpdateStatus[caller.Role] {
		span.SetStatus(codes.Error, "forbidden")
		return nil, dErrors.New(dErrors.CodeForbidden, "only drivers and agents may update shipment status")
	}

	status := models.Status(req.Status)
	now := requestcontext.Now(ctx)
	var updated *models.Shipment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sh, err := s.store.Get(ctx, ScopeFor(caller), shipmentID)
		if err != nil {
			return err
		}
		if err := s.store.UpdateStatus(ctx, shipmentID, status, now); err != nil {
			return err
		}
		if err := s.store.AppendLog(ctx, models.Log{
			ShipmentID: shipmentID,
			Status:     status,
			Location:   req.Location,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		sh.Status = status
		sh.UpdatedAt = now
		updated = sh
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, asDomain(err, "failed to update shipment status")
	}

	actor := caller.UserID
	if err := s.auditor.Record(ctx, &actor, audit.ActionShipmentStatusChanged,
		fmt.Sprintf("%s -> %s", updated.TrackingNumber, status)); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit entry",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(audit.ActionShipmentStatusChanged),
			"error", err,
		)
	}

	s.notifyOwner(ctx, updated, req.Location)
	return updated, nil
}

func (s *Service) notifyOwner(ctx context.Context, sh *models.Shipment, location string) {
	ctx, span := s.tracer.Start(ctx, "shipment.notifyOwner")
	defer span.End()

	owner, err := s.users.Get(ctx, sh.OwnerID)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "failed to load shipment owner for notification",
			"request_id", requestcontext.RequestID(ctx),
			"shipment_id", sh.ID.String(),
			"error", err,
		)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	msg := fmt.Sprintf("Your package %s is now %s at %s", sh.TrackingNumber, sh.Status, location)
	if err := s.notifier.Send(sendCtx, owner.Phone.String(), msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification failed")
		s.logger.ErrorContext(ctx, "failed to notify shipment owner",
			"request_id", requestcontext.RequestID(ctx),
			"shipment_id", sh.ID.String(),
			"error", err,
		)
	}
}

func asDomain(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "shipment not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

var alphabetSize = big.NewInt(int64(len(trackingAlphabet)))

func newTrackingNumber() (string, error) {
	out := make([]byte, trackingLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		out[i] = trackingAlphabet[n.Int64()]
	}
	return trackingPrefix + string(out), nil
}
