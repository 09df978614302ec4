package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kevin07696/ecommerce-client/pkg/errors"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
	"github.com/kevin07696/ecommerce-client/test/mocks"
)

const testSecret = "test-shared-secret"

func fixedClock() time.Time {
	return time.Date(2013, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestDispatcher(t *testing.T, client *mocks.MockHTTPClient, cfg DispatcherConfig) (*Dispatcher, *mocks.MockLogger) {
	t.Helper()
	signer, err := NewSigner(testSecret)
	require.NoError(t, err)
	logger := mocks.NewMockLogger()
	return NewDispatcher(client, signer, logger, cfg, WithClock(fixedClock)), logger
}

func TestDispatcher_SendSignsRequest(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.XMLResponse(http.StatusOK, "<authorization/>"), nil
	})
	d, _ := newTestDispatcher(t, client, DispatcherConfig{})

	body := []byte(XMLHeader + "<authorization><amount>70.00</amount></authorization>")
	raw, err := d.Send(context.Background(), Call{
		Operation: OpAuthorization,
		URL:       "https://gateway.example.com/web/123abc/authorization/",
		Body:      body,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, raw.StatusCode)
	assert.Equal(t, "20130301120000000", raw.TerminalDateTime)

	call := client.LastCall()
	assert.Equal(t, "POST", call.Method)
	assert.Equal(t, body, call.Body)
	assert.Equal(t, "20130301120000000", call.Header.Get(HeaderDate))
	assert.Equal(t, ContentTypeXML, call.Header.Get(HeaderContentType))

	verifier, _ := NewSigner(testSecret)
	want, _ := verifier.Sign("POST", "/web/123abc/authorization/", "20130301120000000", body)
	assert.Equal(t, want, call.Header.Get(HeaderHMAC))
}

func TestDispatcher_SendWithoutBody(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.XMLResponse(http.StatusOK, "<tokenStore><token>tok</token></tokenStore>"), nil
	})
	d, _ := newTestDispatcher(t, client, DispatcherConfig{})

	_, err := d.Send(context.Background(), Call{
		Operation: OpTokenRead,
		URL:       "https://gateway.example.com/tokenstore/123abc/tok/",
	})
	require.NoError(t, err)

	call := client.LastCall()
	assert.Equal(t, "GET", call.Method)
	assert.Empty(t, call.Body)

	verifier, _ := NewSigner(testSecret)
	assert.True(t, verifier.Verify("GET", "/tokenstore/123abc/tok/", "20130301120000000", nil, call.Header.Get(HeaderHMAC)))
}

func TestDispatcher_SigningFailureSendsNothing(t *testing.T) {
	client := mocks.NewMockHTTPClient(nil)
	d := NewDispatcher(client, &Signer{}, nil, DispatcherConfig{})

	_, err := d.Send(context.Background(), Call{Operation: OpPayment, URL: "https://gateway.example.com/web/a/payment/"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindSigning))
	assert.Equal(t, 0, client.CallCount())
}

func TestDispatcher_TransportFailure(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	d, logger := newTestDispatcher(t, client, DispatcherConfig{})

	var out messages.Payment
	err := d.Dispatch(context.Background(), Call{Operation: OpPayment, URL: "https://gateway.example.com/web/a/payment/", Body: []byte("<payment/>")}, &out)

	require.Error(t, err)
	var ge *pkgerrors.GatewayError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, pkgerrors.KindTransport, ge.Kind)
	assert.Equal(t, "20130301120000000", ge.TerminalDateTime)
	assert.True(t, ge.IsRetriable())
	assert.Equal(t, 1, client.CallCount(), "no internal retries")

	require.Len(t, logger.ErrorCalls, 1)
	_, ok := logger.ErrorCalls[0].Field("call_id")
	assert.True(t, ok)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name       string
		op         Operation
		status     int
		body       string
		wantKind   pkgerrors.Kind
		wantReason string
		wantRaw    string
	}{
		{name: "authorization approved", op: OpAuthorization, status: 200, body: "<authorization><approvalCode>123456</approvalCode></authorization>"},
		{name: "authorization declined with 403", op: OpAuthorization, status: 403, body: "<authorization><reason>Declined</reason></authorization>"},
		{name: "token created", op: OpTokenCreate, status: 201, body: "<tokenStore><token>t</token></tokenStore>"},
		{
			name: "token create conflict", op: OpTokenCreate, status: 409,
			body:     "<error><reason>Token already exists</reason></error>",
			wantKind: pkgerrors.KindServerDeclined, wantReason: "Token already exists",
		},
		{
			name: "cancellation forbidden", op: OpCancellation, status: 403,
			body:     "<error><reason>Not allowed</reason></error>",
			wantKind: pkgerrors.KindServerDeclined, wantReason: "Not allowed",
		},
		{
			name: "unparseable error body", op: OpPayment, status: 502,
			body:     "<html>Bad Gateway</html>",
			wantKind: pkgerrors.KindServerDeclined, wantRaw: "<html>Bad Gateway</html>",
		},
		{
			name: "malformed success body", op: OpRefund, status: 200,
			body:     "<refund><amount>",
			wantKind: pkgerrors.KindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &RawResponse{StatusCode: tt.status, Body: []byte(tt.body), TerminalDateTime: "20130301120000000"}
			out := outFor(tt.op)

			err := Interpret(tt.op, raw, out)

			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ge *pkgerrors.GatewayError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, tt.wantKind, ge.Kind)
			assert.Equal(t, "20130301120000000", ge.TerminalDateTime)
			if tt.wantKind == pkgerrors.KindServerDeclined {
				assert.Equal(t, tt.status, ge.StatusCode)
				assert.Equal(t, tt.op.FailureMessage, ge.Message)
				assert.Equal(t, tt.wantRaw, ge.RawBody)
				if tt.wantReason != "" {
					require.NotNil(t, ge.ErrorMessage)
					assert.Equal(t, tt.wantReason, ge.ErrorMessage.Reason)
				}
			}
		})
	}
}

func outFor(op Operation) messages.Element {
	switch op.Name {
	case OpAuthorization.Name:
		return &messages.Authorization{}
	case OpPayment.Name:
		return &messages.Payment{}
	case OpRefund.Name:
		return &messages.Refund{}
	case OpReversal.Name:
		return &messages.Reversal{}
	case OpCancellation.Name:
		return &messages.Cancellation{}
	default:
		return &messages.Token{}
	}
}

func TestDispatcher_DispatchDecodesDecline(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.XMLResponse(http.StatusForbidden, "<authorization><reason>Declined</reason><amount>120.00</amount></authorization>"), nil
	})
	d, _ := newTestDispatcher(t, client, DispatcherConfig{})

	var out messages.Authorization
	err := d.Dispatch(context.Background(), Call{Operation: OpAuthorization, URL: "https://gateway.example.com/web/a/authorization/", Body: []byte("<authorization/>")}, &out)

	require.NoError(t, err)
	assert.False(t, out.Approved())
	assert.Equal(t, "Declined", out.Reason)
	assert.Equal(t, "120.00", out.Amount)
}

func TestDispatcher_DebugLogIsRedacted(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.XMLResponse(http.StatusOK, "<authorization/>"), nil
	})
	d, logger := newTestDispatcher(t, client, DispatcherConfig{})

	body := []byte("<authorization><cardNumber>4222222222222</cardNumber><cardVerificationCode>999</cardVerificationCode></authorization>")
	var out messages.Authorization
	require.NoError(t, d.Dispatch(context.Background(), Call{Operation: OpAuthorization, URL: "https://gateway.example.com/web/a/authorization/", Body: body}, &out))

	require.Len(t, logger.DebugCalls, 1)
	logged, ok := logger.DebugCalls[0].Field("body")
	require.True(t, ok)
	assert.NotContains(t, logged, "4222222222222")
	assert.NotContains(t, logged, "999")
}

func TestDispatcher_ConcurrentCallsAreIsolated(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.XMLResponse(http.StatusOK, "<payment/>"), nil
	})

	var tick int64
	clock := func() time.Time {
		n := atomic.AddInt64(&tick, 1)
		return fixedClock().Add(time.Duration(n) * time.Millisecond)
	}
	signer, err := NewSigner(testSecret)
	require.NoError(t, err)
	d := NewDispatcher(client, signer, nil, DispatcherConfig{}, WithClock(clock))

	const calls = 50
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := []byte(fmt.Sprintf("<payment><amount>%d.00</amount></payment>", i))
			var out messages.Payment
			assert.NoError(t, d.Dispatch(context.Background(), Call{
				Operation: OpPayment,
				URL:       "https://gateway.example.com/web/a/payment/",
				Body:      body,
			}, &out))
		}(i)
	}
	wg.Wait()

	require.Equal(t, calls, client.CallCount())
	seen := make(map[string]bool)
	for _, c := range client.Calls {
		date := c.Header.Get(HeaderDate)
		assert.False(t, seen[date], "timestamp %s reused", date)
		seen[date] = true
		assert.True(t, strings.HasPrefix(string(c.Body), "<payment>"))
		assert.True(t, signer.Verify(c.Method, c.Path, date, c.Body, c.Header.Get(HeaderHMAC)),
			"signature must match this request's own timestamp and body")
	}
}

func TestDispatcher_CircuitBreakerFailsFast(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.XMLResponse(http.StatusServiceUnavailable, "<error><reason>down</reason></error>"), nil
	})
	d, _ := newTestDispatcher(t, client, DispatcherConfig{
		CircuitBreaker: &BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour},
	})
	call := Call{Operation: OpPayment, URL: "https://gateway.example.com/web/a/payment/", Body: []byte("<payment/>")}

	for i := 0; i < 2; i++ {
		err := d.Dispatch(context.Background(), call, &messages.Payment{})
		assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindServerDeclined))
	}
	assert.Equal(t, BreakerOpen, d.Breaker().State())

	err := d.Dispatch(context.Background(), call, &messages.Payment{})
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindTransport))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, client.CallCount())
}

func TestDispatcher_RateLimiterHonoursContext(t *testing.T) {
	client := mocks.NewMockHTTPClient(nil)
	d, _ := newTestDispatcher(t, client, DispatcherConfig{RequestsPerSecond: 0.001, Burst: 1})
	call := Call{Operation: OpTokenRead, URL: "https://gateway.example.com/tokenstore/a/t/"}

	_, err := d.Send(context.Background(), call)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = d.Send(ctx, call)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindTransport))
	assert.Equal(t, 1, client.CallCount())
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "approved", outcomeOf(nil, &messages.Payment{ApprovalCode: "1"}))
	assert.Equal(t, "declined", outcomeOf(nil, &messages.Payment{}))
	assert.Equal(t, "success", outcomeOf(nil, &messages.Token{}))
	assert.Equal(t, "signing_error", outcomeOf(pkgerrors.NewSigningError("x", nil), nil))
	assert.Equal(t, "server_declined", outcomeOf(pkgerrors.NewServerDeclinedError("x", 500, nil, "", ""), nil))
	assert.Equal(t, "transport_error", outcomeOf(pkgerrors.NewTransportError("x", "", nil), nil))
}

func TestDispatcher_SignsEscapedPath(t *testing.T) {
	client := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.XMLResponse(http.StatusOK, "<tokenStore><token>my token</token></tokenStore>"), nil
	})
	d, _ := newTestDispatcher(t, client, DispatcherConfig{})

	_, err := d.Send(context.Background(), Call{
		Operation: OpTokenRead,
		URL:       "https://gateway.example.com/tokenstore/123abc/my%20token/",
	})
	require.NoError(t, err)

	call := client.LastCall()
	require.Equal(t, "/tokenstore/123abc/my%20token/", call.Path)

	verifier, _ := NewSigner(testSecret)
	escaped, _ := verifier.Sign("GET", "/tokenstore/123abc/my%20token/", "20130301120000000", nil)
	decoded, _ := verifier.Sign("GET", "/tokenstore/123abc/my token/", "20130301120000000", nil)
	assert.Equal(t, escaped, call.Header.Get(HeaderHMAC))
	assert.NotEqual(t, decoded, call.Header.Get(HeaderHMAC))
}
