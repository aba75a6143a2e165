// Package middleware throttles login attempts per client IP.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ishemalink/internal/ratelimit/models"
	"ishemalink/pkg/platform/circuit"
	"ishemalink/pkg/platform/httputil"
	"ishemalink/pkg/requestcontext"
)

// Limiter counts one request under key against limit per window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// ThrottleMetrics is satisfied by the process metrics.
type ThrottleMetrics interface {
	IncrementLoginsThrottled()
}

// Middleware applies the login throttle. The primary limiter is normally
// Redis; while its circuit is open requests are counted by the in-memory
// fallback and marked degraded.
type Middleware struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  ThrottleMetrics
	disabled bool
}

type Option func(*Middleware)

func WithFallback(fallback Limiter, breaker *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.fallback = fallback
		m.breaker = breaker
	}
}

func WithMetrics(metrics ThrottleMetrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// WithDisabled turns throttling off (load tests and demos).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(primary Limiter, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("login throttle disabled")
	}
	return m
}

// Throttle rejects a client IP's requests beyond the configured limit with 429.
func (m *Middleware) Throttle() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			result, degraded, err := m.check(ctx, models.LoginKey(ip))
			if err != nil {
				// No limiter answered; fail open.
				m.logger.ErrorContext(ctx, "failed to check login rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}

			if !result.Allowed {
				if m.metrics != nil {
					m.metrics.IncrementLoginsThrottled()
				}
				m.logger.WarnContext(ctx, "login throttled",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", ip,
				)
				writeRateLimitExceeded(w, result, requestcontext.Now(ctx))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check asks the primary limiter unless its circuit is open. While open the
// primary is still probed so the circuit can close again, but the fallback's
// answer is used.
func (m *Middleware) check(ctx context.Context, key string) (*models.Result, bool, error) {
	if m.breaker == nil || m.fallback == nil {
		res, err := m.primary.Allow(ctx, key, m.limit, m.window)
		return res, false, err
	}

	if m.breaker.IsOpen() {
		if _, err := m.primary.Allow(ctx, key, m.limit, m.window); err == nil {
			if usePrimary, change := m.breaker.RecordSuccess(); usePrimary {
				m.logChange(ctx, change)
			}
		} else {
			m.breaker.RecordFailure()
		}
		res, err := m.fallback.Allow(ctx, key, m.limit, m.window)
		return res, true, err
	}

	res, err := m.primary.Allow(ctx, key, m.limit, m.window)
	if err == nil {
		m.breaker.RecordSuccess()
		return res, false, nil
	}
	_, change := m.breaker.RecordFailure()
	m.logChange(ctx, change)
	m.logger.WarnContext(ctx, "primary rate limiter failed, using fallback",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	res, err = m.fallback.Allow(ctx, key, m.limit, m.window)
	return res, true, err
}

func (m *Middleware) logChange(ctx context.Context, change circuit.Change) {
	switch {
	case change.Opened:
		m.logger.WarnContext(ctx, "rate limiter circuit opened", "breaker", m.breaker.Name())
	case change.Closed:
		m.logger.InfoContext(ctx, "rate limiter circuit closed", "breaker", m.breaker.Name())
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result, now time.Time) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(now)))
	httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:       "rate_limited",
		Description: "Too many login attempts. Try again later.",
	})
}
