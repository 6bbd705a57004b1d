package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irdesk/internal/platform/metrics"
	"irdesk/pkg/testutil"
)

type pingFeature struct{}

func (pingFeature) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func newTestRouter(checks map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      metrics.NewWithRegistry(reg),
		Gatherer:     reg,
		HealthChecks: checks,
	}, pingFeature{})
}

func TestHealth(t *testing.T) {
	testutil.Given(t, "every dependency answers", func(t *testing.T) {
		router := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})

		testutil.When(t, "calling GET /health", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

			testutil.Then(t, "it reports ok", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				resp := testutil.UnmarshalResponse[healthResponse](t, rr)
				assert.Equal(t, "ok", resp.Status)
				assert.Equal(t, "ok", resp.Checks["postgres"])
			})
		})
	})

	testutil.Given(t, "redis is unreachable", func(t *testing.T) {
		router := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
		})

		testutil.When(t, "calling GET /health", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

			testutil.Then(t, "it reports degraded with the failing check", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
				resp := testutil.UnmarshalResponse[healthResponse](t, rr)
				assert.Equal(t, "degraded", resp.Status)
				assert.Equal(t, "ok", resp.Checks["postgres"])
				assert.Contains(t, resp.Checks["redis"], "connection refused")
			})
		})
	})
}

func TestMetricsExposeRouteLatency(t *testing.T) {
	router := newTestRouter(nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ping"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	body := string(testutil.ReadBody(t, rr))
	require.True(t, strings.Contains(body, "irdesk_http_request_duration_seconds"))
	assert.Contains(t, body, `route="/ping"`)
}
