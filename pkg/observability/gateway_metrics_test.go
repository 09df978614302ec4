package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGatewayRequest(t *testing.T) {
	before := testutil.ToFloat64(gatewayRequestsTotal.WithLabelValues("payment", OutcomeApproved))

	RecordGatewayRequest("payment", OutcomeApproved, 150*time.Millisecond)
	RecordGatewayRequest("payment", OutcomeApproved, 250*time.Millisecond)

	after := testutil.ToFloat64(gatewayRequestsTotal.WithLabelValues("payment", OutcomeApproved))
	assert.Equal(t, before+2, after)
}

func TestTrackGatewayInFlight(t *testing.T) {
	base := testutil.ToFloat64(gatewayRequestsInFlight)

	done := TrackGatewayInFlight()
	assert.Equal(t, base+1, testutil.ToFloat64(gatewayRequestsInFlight))

	done()
	assert.Equal(t, base, testutil.ToFloat64(gatewayRequestsInFlight))
}

func TestRecordSandboxDecision(t *testing.T) {
	approved := sandboxDecisionsTotal.WithLabelValues("refund", OutcomeApproved)
	declined := sandboxDecisionsTotal.WithLabelValues("refund", OutcomeDeclined)
	a0, d0 := testutil.ToFloat64(approved), testutil.ToFloat64(declined)

	RecordSandboxDecision("refund", true)
	RecordSandboxDecision("refund", false)
	RecordSandboxDecision("refund", false)

	assert.Equal(t, a0+1, testutil.ToFloat64(approved))
	assert.Equal(t, d0+2, testutil.ToFloat64(declined))
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/tokenstore/{cardAcceptor}/{token}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/tokenstore/{cardAcceptor}/{token}", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tokenstore/TEST123/secret-token/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHealthChecker(t *testing.T) {
	h := NewHealthChecker()
	h.Register("signing_keys", func(context.Context) error { return nil })

	status := h.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["signing_keys"])

	h.Register("upstream", func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	MetricsHandler(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy: down")
}

func TestMetricsHandler_ServesPrometheus(t *testing.T) {
	RecordGatewayRequest("authorization", OutcomeSuccess, time.Millisecond)

	rec := httptest.NewRecorder()
	MetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ecommerce_gateway_requests_total")

	rec = httptest.NewRecorder()
	MetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
