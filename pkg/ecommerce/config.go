package ecommerce

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/logging"
	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
	"github.com/kevin07696/ecommerce-client/pkg/timeutil"
)

// BaseURLs holds the gateway root for each environment.
// A trailing slash is optional.
type BaseURLs struct {
	Live string
	Test string
}

// Config is everything a Client needs. It is read once by NewClient.
type Config struct {
	Environment  messages.Environment
	CardAcceptor string
	SharedSecret string
	BaseURLs     BaseURLs

	// Zero values use the transport defaults
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// RequestsPerSecond > 0 throttles outgoing calls
	RequestsPerSecond float64
	Burst             int

	// CircuitBreaker fails calls fast after repeated transport or 5xx failures
	CircuitBreaker bool
}

// HTTPDoer is satisfied by *http.Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type options struct {
	httpClient HTTPDoer
	logger     ports.Logger
	clock      timeutil.Clock
}

// Option customizes a Client
type Option func(*options)

// WithHTTPClient replaces the default gateway-tuned *http.Client
func WithHTTPClient(c HTTPDoer) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger logs through the given zap logger. Card data is redacted.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logging.NewZapLogger(logger)
		}
	}
}

// WithClock replaces the source of terminal timestamps
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func withPortsLogger(logger ports.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// FormatAmount renders an amount the way the gateway expects it: two decimals
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
