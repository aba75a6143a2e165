// Package service implements the cache-aside tariff read and its admin invalidation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ishemalink/internal/tariff/models"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/platform/sentinel"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Cache,AuditPublisher
type Store interface {
	List(ctx context.Context) ([]models.Tariff, error)
}

// Cache returns sentinel.ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context) ([]models.Tariff, error)
	Set(ctx context.Context, tariffs []models.Tariff, ttl time.Duration) error
	Delete(ctx context.Context) error
}

type AuditPublisher interface {
	Record(ctx context.Context, actor *id.UserID, action audit.Action, detail string) error
}

type CacheMetrics interface {
	IncrementTariffCacheHit()
	IncrementTariffCacheMiss()
}

const DefaultCacheTTL = 24 * time.Hour

type Service struct {
	store    Store
	cache    Cache
	auditor  AuditPublisher
	metrics  CacheMetrics
	cacheTTL time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithMetrics(m CacheMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, cache Cache, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		cache:    cache,
		auditor:  auditor,
		cacheTTL: DefaultCacheTTL,
		logger:   slog.Default(),
		tracer:   otel.Tracer("ishemalink/tariff"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTariffs returns the tariff list and whether it came from the cache.
// Cache failures fall through to the store; store failures are internal errors.
func (s *Service) GetTariffs(ctx context.Context) ([]models.Tariff, bool, error) {
	ctx, span := s.tracer.Start(ctx, "tariff.GetTariffs")
	defer span.End()

	tariffs, err := s.cache.Get(ctx)
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.recordHit()
		return tariffs, true, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		s.logger.WarnContext(ctx, "tariff cache read failed, falling back to store",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))
	s.recordMiss()

	tariffs, err = s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store read failed")
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tariffs")
	}

	if err := s.cache.Set(ctx, tariffs, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "tariff cache write failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return tariffs, false, nil
}

// InvalidateTariffs drops the cached list so the next read goes to the store.
func (s *Service) InvalidateTariffs(ctx context.Context, caller requestcontext.Caller) error {
	if caller.Role != id.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only admins can clear the tariff cache")
	}
	if err := s.cache.Delete(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear tariff cache")
	}

	actor := caller.UserID
	if err := s.auditor.Record(ctx, &actor, audit.ActionTariffCacheCleared, models.CacheKey); err != nil {
		s.logger.ErrorContext(ctx, "failed to record tariff cache audit", "error", err)
	}
	s.logger.InfoContext(ctx, "tariff cache cleared",
		"user_id", caller.UserID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) recordHit() {
	if s.metrics != nil {
		s.metrics.IncrementTariffCacheHit()
	}
}

func (s *Service) recordMiss() {
	if s.metrics != nil {
		s.metrics.IncrementTariffCacheMiss()
	}
}
