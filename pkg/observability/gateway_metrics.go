package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway call outcomes
const (
	OutcomeApproved       = "approved"
	OutcomeDeclined       = "declined"
	OutcomeSuccess        = "success"
	OutcomeSigningError   = "signing_error"
	OutcomeTransportError = "transport_error"
	OutcomeServerDeclined = "server_declined"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecommerce_gateway_requests_total",
			Help: "Total number of calls made to the e-commerce gateway",
		},
		[]string{"operation", "outcome"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ecommerce_gateway_request_duration_seconds",
			Help: "Duration of e-commerce gateway calls in seconds",
			// Card authorizations typically take 200ms to several seconds
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	gatewayRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecommerce_gateway_requests_in_flight",
			Help: "Number of e-commerce gateway calls currently waiting for a response",
		},
	)
)

// RecordGatewayRequest records the outcome and duration of one gateway call
func RecordGatewayRequest(operation, outcome string, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// TrackGatewayInFlight increments the in-flight gauge and returns the matching decrement
func TrackGatewayInFlight() func() {
	gatewayRequestsInFlight.Inc()
	return gatewayRequestsInFlight.Dec
}
