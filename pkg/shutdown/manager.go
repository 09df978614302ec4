package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	shutdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shutdown_duration_seconds",
		Help:    "Total time taken to shutdown gracefully",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	shutdownErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutdown_errors_total",
		Help: "Total number of shutdown errors by component",
	}, []string{"component"})
)

// Func shuts down one component
type Func func(context.Context) error

type component struct {
	name string
	fn   Func
}

// Manager stops registered components in reverse registration order
type Manager struct {
	logger     *zap.Logger
	timeout    time.Duration
	mu         sync.Mutex
	components []component
}

func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger, timeout: timeout}
}

// Register adds a component. The last registered is stopped first.
func (m *Manager) Register(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, fn: fn})
}

// RegisterHTTPServer registers anything with an http.Server style Shutdown
func (m *Manager) RegisterHTTPServer(name string, server interface{ Shutdown(context.Context) error }) {
	m.Register(name, server.Shutdown)
}

// WaitForShutdown blocks until SIGINT, SIGTERM or ctx is done, then shuts down
func (m *Manager) WaitForShutdown(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	m.logger.Info("Received shutdown signal - initiating graceful shutdown",
		zap.Duration("timeout", m.timeout),
	)
	return m.Shutdown()
}

// Shutdown stops every component within the manager's timeout and joins their errors
func (m *Manager) Shutdown() error {
	start := time.Now()
	defer func() { shutdownDuration.Observe(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.Lock()
	components := make([]component, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.fn(ctx); err != nil {
			shutdownErrors.WithLabelValues(c.name).Inc()
			m.logger.Error("Component shutdown failed", zap.String("component", c.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		m.logger.Info("Component shut down", zap.String("component", c.name))
	}

	m.logger.Info("Graceful shutdown completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("errors", len(errs)),
	)
	return errors.Join(errs...)
}
