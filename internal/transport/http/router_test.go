package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"ishemalink/pkg/testutil"
)

type panicModule struct{}

func (panicModule) Register(r chi.Router) {
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

func newTestRouter(checks map[string]HealthCheck) http.Handler {
	return NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, checks, panicModule{})
}

func TestHealthz(t *testing.T) {
	t.Run("all dependencies reachable", func(t *testing.T) {
		r := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("one dependency down", func(t *testing.T) {
		r := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		assert.NotContains(t, rr.Body.String(), "refused")
	})
}

func TestMiddlewareChain(t *testing.T) {
	r := newTestRouter(nil)

	req := testutil.NewRequest(t, http.MethodGet, "/boom")
	req.Header.Set("X-Request-ID", "req-7")
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	assert.Equal(t, "req-7", rr.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	rr := testutil.DoRequest(newTestRouter(nil), testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}
