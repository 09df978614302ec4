// Package sandbox simulates the e-commerce gateway for tests and local development.
//
// It verifies the mws-hmac signature of every request, validates bodies with the
// same rules the client uses and answers with canned outcomes:
//   - amount 120.00 is declined with status 200 and an empty approval code
//   - amount 403.00 is declined with status 403
//   - any other amount is approved
package sandbox

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/ecommerce-client/internal/adapters/gateway"
	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
	pkgerrors "github.com/kevin07696/ecommerce-client/pkg/errors"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
	"github.com/kevin07696/ecommerce-client/pkg/middleware"
	"github.com/kevin07696/ecommerce-client/pkg/observability"
	"github.com/kevin07696/ecommerce-client/pkg/timeutil"
)

var (
	declineAmount   = decimal.RequireFromString("120.00")
	forbiddenAmount = decimal.RequireFromString("403.00")
)

const (
	merchantName    = "Sandbox Merchant"
	merchantAddress = "Sandbox Street 1, Reykjavik"
	agreementNumber = "9990001"
)

type storedCard struct {
	number string
	expiry string
}

type transaction struct {
	kind             string
	acceptor         string
	guid             string
	amount           string
	currency         string
	card             storedCard
	terminalDateTime string
	reversed         bool
	cancelled        bool
}

// Sandbox is an in-memory gateway. It is safe for concurrent use.
type Sandbox struct {
	signers map[string]*gateway.Signer
	logger  ports.Logger
	clock   timeutil.Clock

	limiter *middleware.RateLimiter

	mu           sync.Mutex
	tokens       map[string]storedCard
	transactions map[string]*transaction
}

// Option customizes a Sandbox
type Option func(*Sandbox)

// WithRateLimit throttles each card acceptor to requestsPerSecond, answering 429
// when exceeded. Call Close to release the limiter.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(s *Sandbox) {
		if requestsPerSecond > 0 {
			s.limiter = middleware.NewRateLimiter(requestsPerSecond, burst, func(r *http.Request) string {
				return chi.URLParam(r, "cardAcceptor")
			})
		}
	}
}

// New creates a sandbox accepting the given card acceptors, keyed by id with
// their shared secrets as values
func New(acceptors map[string]string, logger ports.Logger, opts ...Option) (*Sandbox, error) {
	if len(acceptors) == 0 {
		return nil, errors.New("at least one card acceptor is required")
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}

	signers := make(map[string]*gateway.Signer, len(acceptors))
	for id, secret := range acceptors {
		signer, err := gateway.NewSigner(secret)
		if err != nil {
			return nil, fmt.Errorf("card acceptor %s: %w", id, err)
		}
		signers[id] = signer
	}

	s := &Sandbox{
		signers:      signers,
		logger:       logger,
		clock:        timeutil.Now,
		tokens:       make(map[string]storedCard),
		transactions: make(map[string]*transaction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close stops background work. The sandbox keeps serving afterwards.
func (s *Sandbox) Close(context.Context) error {
	if s.limiter != nil {
		s.limiter.Shutdown()
	}
	return nil
}

func (s *Sandbox) throttle(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return s.limiter.Middleware(next)
}

// Routes returns the gateway's HTTP surface
func (s *Sandbox) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(observability.HTTPMetricsMiddleware)

	r.Route("/web/{cardAcceptor}", func(r chi.Router) {
		r.Use(s.throttle, s.verifySignature)
		r.Post("/authorization/", s.handleAuthorization)
		r.Post("/payment/", s.handlePayment)
		r.Post("/refund/", s.handleRefund)
		r.Post("/reversal/", s.handleReversal)
		r.Post("/cancellation/", s.handleCancellation)
	})

	r.Route("/tokenstore/{cardAcceptor}/{token}", func(r chi.Router) {
		r.Use(s.throttle, s.verifySignature)
		r.Put("/", s.handleTokenCreate)
		r.Post("/", s.handleTokenUpdate)
		r.Get("/", s.handleTokenRead)
		r.Delete("/", s.handleTokenDelete)
	})

	return r
}

func (s *Sandbox) verifySignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acceptor := chi.URLParam(r, "cardAcceptor")
		signer, ok := s.signers[acceptor]
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "Unknown card acceptor")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Unreadable request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		date := r.Header.Get(gateway.HeaderDate)
		if !timeutil.IsTerminalDateTime(date) {
			s.writeError(w, http.StatusUnauthorized, "Missing or malformed mws-date header")
			return
		}
		if !signer.Verify(r.Method, r.URL.EscapedPath(), date, body, r.Header.Get(gateway.HeaderHMAC)) {
			s.logger.Warn("sandbox rejected request signature",
				ports.String("card_acceptor", acceptor),
				ports.String("method", r.Method),
				ports.String("path", r.URL.EscapedPath()),
			)
			s.writeError(w, http.StatusUnauthorized, "Invalid signature")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Sandbox) decode(w http.ResponseWriter, r *http.Request, out messages.Element) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Unreadable request body")
		return false
	}
	if err := gateway.Decode(body, out); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body", err.Error())
		return false
	}
	return true
}

func (s *Sandbox) writeEntity(w http.ResponseWriter, status int, el messages.Element) {
	body, err := gateway.Encode(el)
	if err != nil {
		s.logger.Error("sandbox failed to encode response", ports.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set(gateway.HeaderContentType, gateway.ContentTypeXML)
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Sandbox) writeError(w http.ResponseWriter, status int, reason string, details ...string) {
	s.writeEntity(w, status, messages.ErrorMessage{Reason: reason, Details: details})
}

func (s *Sandbox) writeValidation(w http.ResponseWriter, err error) {
	var ge *pkgerrors.GatewayError
	if errors.As(err, &ge) {
		s.writeError(w, http.StatusBadRequest, "Invalid request", ge.Violations...)
		return
	}
	s.writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
}

// decide returns the HTTP status and whether the amount is approved
func decide(operation, amount string) (int, bool) {
	status, approved := http.StatusOK, true
	if d, err := decimal.NewFromString(amount); err == nil {
		switch {
		case d.Equal(declineAmount):
			status, approved = http.StatusOK, false
		case d.Equal(forbiddenAmount):
			status, approved = http.StatusForbidden, false
		}
	}
	observability.RecordSandboxDecision(operation, approved)
	return status, approved
}

func approvalCode() string {
	id := uuid.New()
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(id[:4])%1000000)
}

func maskCardNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

func cardTypeName(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "VISA"
	case strings.HasPrefix(number, "5"):
		return "MasterCard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "American Express"
	default:
		return "Unknown"
	}
}

func tokenKey(acceptor, token string) string {
	return acceptor + "/" + token
}

func tokenParam(r *http.Request) string {
	raw := chi.URLParam(r, "token")
	if token, err := url.PathUnescape(raw); err == nil {
		return token
	}
	return raw
}
