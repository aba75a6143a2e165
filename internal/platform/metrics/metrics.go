package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide Prometheus metrics.
type Metrics struct {
	UsersCreated    prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	LoginsThrottled prometheus.Counter
	TariffCacheHits prometheus.Counter
	TariffCacheMiss prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ishemalink_users_created_total",
			Help: "Total number of users registered",
		}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ishemalink_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ishemalink_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method"}),
		LoginsThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ishemalink_logins_throttled_total",
			Help: "Login attempts rejected by the per-IP throttle",
		}),
		TariffCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ishemalink_tariff_cache_hits_total",
			Help: "Tariff reads served from the cache",
		}),
		TariffCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ishemalink_tariff_cache_misses_total",
			Help: "Tariff reads that went to the database",
		}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, start time.Time) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

// IncrementLoginsThrottled records a throttled login attempt.
func (m *Metrics) IncrementLoginsThrottled() {
	m.LoginsThrottled.Inc()
}

func (m *Metrics) IncrementTariffCacheHit() {
	m.TariffCacheHits.Inc()
}

func (m *Metrics) IncrementTariffCacheMiss() {
	m.TariffCacheMiss.Inc()
}
