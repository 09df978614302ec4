package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
	pkgerrors "github.com/kevin07696/ecommerce-client/pkg/errors"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
	"github.com/kevin07696/ecommerce-client/pkg/observability"
	"github.com/kevin07696/ecommerce-client/pkg/timeutil"
)

// DispatcherConfig holds optional throttling and fail-fast settings.
// Zero values disable both.
type DispatcherConfig struct {
	RequestsPerSecond float64
	Burst             int
	CircuitBreaker    *BreakerConfig
}

// Call is one request to send: the operation, its resolved URL and encoded body.
// Body is nil for operations without an entity (token read and delete).
type Call struct {
	Operation Operation
	URL       string
	Body      []byte
}

// RawResponse is the undecoded gateway answer
type RawResponse struct {
	StatusCode       int
	Header           http.Header
	Body             []byte
	TerminalDateTime string
}

// Dispatcher signs and sends calls and maps responses to entities or errors.
// Every call builds its own timestamp, headers and body; concurrent use is safe.
type Dispatcher struct {
	httpClient ports.HTTPClient
	signer     *Signer
	logger     ports.Logger
	clock      timeutil.Clock
	limiter    *rate.Limiter
	breaker    *CircuitBreaker
}

// DispatcherOption customizes a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithClock replaces the source of terminal timestamps
func WithClock(clock timeutil.Clock) DispatcherOption {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

func NewDispatcher(httpClient ports.HTTPClient, signer *Signer, logger ports.Logger, cfg DispatcherConfig, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = ports.NopLogger{}
	}

	d := &Dispatcher{
		httpClient: httpClient,
		signer:     signer,
		logger:     logger,
		clock:      timeutil.Now,
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.CircuitBreaker != nil {
		d.breaker = NewCircuitBreaker(*cfg.CircuitBreaker)
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Breaker returns the circuit breaker, or nil when none is configured
func (d *Dispatcher) Breaker() *CircuitBreaker {
	return d.breaker
}

// Send signs and transmits one call and returns the raw response.
// Signing happens before any I/O; a signing failure means nothing was sent.
// The signed path is the percent-encoded form sent on the wire, so token names
// that need escaping are signed escaped.
func (d *Dispatcher) Send(ctx context.Context, call Call) (*RawResponse, error) {
	terminalDateTime := timeutil.FormatTerminalDateTime(d.clock())

	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Operation.Method, call.URL, body)
	if err != nil {
		return nil, pkgerrors.NewTransportError("failed to create gateway request", terminalDateTime, err)
	}

	headers, err := d.signer.Headers(call.Operation.Method, req.URL.EscapedPath(), terminalDateTime, call.Body)
	if err != nil {
		return nil, err
	}
	req.Header = headers

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, pkgerrors.NewTransportError("rate limiter wait aborted", terminalDateTime, err)
		}
	}
	if d.breaker != nil {
		if err := d.breaker.Allow(); err != nil {
			return nil, pkgerrors.NewTransportError("gateway unavailable", terminalDateTime, err)
		}
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.record(false)
		return nil, pkgerrors.NewTransportError("request to gateway failed", terminalDateTime, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		d.record(false)
		return nil, pkgerrors.NewTransportError("failed to read gateway response", terminalDateTime, err)
	}
	d.record(resp.StatusCode < http.StatusInternalServerError)

	return &RawResponse{
		StatusCode:       resp.StatusCode,
		Header:           resp.Header,
		Body:             data,
		TerminalDateTime: terminalDateTime,
	}, nil
}

func (d *Dispatcher) record(success bool) {
	if d.breaker != nil {
		d.breaker.Record(success)
	}
}

// Interpret decodes raw into out when its status is a success status for op.
// Any other status becomes a ServerDeclinedError carrying the parsed error
// message, or the raw body when it does not parse.
func Interpret(op Operation, raw *RawResponse, out messages.Element) error {
	if op.IsSuccess(raw.StatusCode) {
		if out == nil {
			return nil
		}
		if err := Decode(raw.Body, out); err != nil {
			return pkgerrors.NewTransportError("malformed gateway response", raw.TerminalDateTime, err)
		}
		return nil
	}

	var errMsg messages.ErrorMessage
	if err := Decode(raw.Body, &errMsg); err != nil {
		return pkgerrors.NewServerDeclinedError(op.FailureMessage, raw.StatusCode, nil, string(raw.Body), raw.TerminalDateTime)
	}
	return pkgerrors.NewServerDeclinedError(op.FailureMessage, raw.StatusCode, &errMsg, "", raw.TerminalDateTime)
}

// Dispatch sends call and decodes the result into out
func (d *Dispatcher) Dispatch(ctx context.Context, call Call, out messages.Element) error {
	callID := uuid.NewString()
	start := time.Now()
	done := observability.TrackGatewayInFlight()
	defer done()

	d.logger.Info("sending request to e-commerce gateway",
		ports.String("call_id", callID),
		ports.String("operation", call.Operation.Name),
		ports.String("method", call.Operation.Method),
		ports.String("url", call.URL),
	)
	if len(call.Body) > 0 {
		d.logger.Debug("gateway request body",
			ports.String("call_id", callID),
			ports.String("body", RedactBody(call.Body)),
		)
	}

	raw, err := d.Send(ctx, call)
	if err == nil {
		err = Interpret(call.Operation, raw, out)
	}

	outcome := outcomeOf(err, out)
	observability.RecordGatewayRequest(call.Operation.Name, outcome, time.Since(start))

	if err != nil {
		fields := []ports.Field{
			ports.String("call_id", callID),
			ports.String("operation", call.Operation.Name),
			ports.String("outcome", outcome),
			ports.Err(err),
		}
		var ge *pkgerrors.GatewayError
		if errors.As(err, &ge) && ge.TerminalDateTime != "" {
			fields = append(fields, ports.String("terminal_date_time", ge.TerminalDateTime))
		}
		d.logger.Error("e-commerce gateway call failed", fields...)
		return err
	}

	d.logger.Info("e-commerce gateway call completed",
		ports.String("call_id", callID),
		ports.String("operation", call.Operation.Name),
		ports.Int("status", raw.StatusCode),
		ports.String("outcome", outcome),
		ports.String("terminal_date_time", raw.TerminalDateTime),
		ports.Duration("elapsed", time.Since(start)),
	)
	return nil
}

type approvable interface {
	Approved() bool
}

func outcomeOf(err error, out messages.Element) string {
	if err != nil {
		switch pkgerrors.KindOf(err) {
		case pkgerrors.KindSigning:
			return observability.OutcomeSigningError
		case pkgerrors.KindServerDeclined:
			return observability.OutcomeServerDeclined
		default:
			return observability.OutcomeTransportError
		}
	}
	if a, ok := out.(approvable); ok {
		if a.Approved() {
			return observability.OutcomeApproved
		}
		return observability.OutcomeDeclined
	}
	return observability.OutcomeSuccess
}
