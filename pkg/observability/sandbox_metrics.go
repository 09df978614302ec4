package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sandboxDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sandbox_decisions_total",
	Help: "Approve/decline decisions taken by the gateway sandbox",
}, []string{
	"transaction_type", // authorization, payment, refund
	"decision",         // approved, declined
})

// RecordSandboxDecision counts one simulated issuer decision
func RecordSandboxDecision(transactionType string, approved bool) {
	decision := OutcomeDeclined
	if approved {
		decision = OutcomeApproved
	}
	sandboxDecisionsTotal.WithLabelValues(transactionType, decision).Inc()
}
