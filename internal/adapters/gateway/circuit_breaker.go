package gateway

import (
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a CircuitBreaker
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without contacting the gateway while the breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures a CircuitBreaker
type BreakerConfig struct {
	// FailureThreshold consecutive failures open the breaker
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before admitting a probe
	OpenTimeout time.Duration
	// HalfOpenProbes is how many calls may run while half-open
	HalfOpenProbes uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenProbes:   1,
	}
}

// CircuitBreaker fails calls fast after repeated transport or 5xx failures.
// It never retries a call; a rejected call is reported to the caller as-is.
type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	now      func() time.Time
	state    BreakerState
	failures uint32
	probes   uint32
	openedAt time.Time
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if cfg.HalfOpenProbes == 0 {
		cfg.HalfOpenProbes = 1
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// Allow reserves a slot for one call or returns ErrCircuitOpen.
// Every successful Allow must be followed by exactly one Record.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == BreakerOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		cb.state = BreakerHalfOpen
		cb.probes = 0
	}

	if cb.state == BreakerHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenProbes {
			return ErrCircuitOpen
		}
		cb.probes++
	}
	return nil
}

// Record reports the outcome of a call admitted by Allow
func (cb *CircuitBreaker) Record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if success {
		cb.state = BreakerClosed
		cb.failures = 0
		cb.probes = 0
		return
	}

	cb.failures++
	if cb.state == BreakerHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
		cb.state = BreakerOpen
		cb.openedAt = cb.now()
		cb.probes = 0
	}
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
