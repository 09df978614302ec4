package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kevin07696/ecommerce-client/pkg/messages"
)

// Kind classifies where in the request pipeline a call failed
type Kind string

const (
	// KindValidation - request fields failed local validation, nothing was sent
	KindValidation Kind = "validation"
	// KindSigning - the request could not be signed (configuration problem), nothing was sent
	KindSigning Kind = "signing"
	// KindTransport - the gateway could not be reached or the response stream was unreadable
	KindTransport Kind = "transport"
	// KindServerDeclined - the gateway answered with a non-success status for the operation
	KindServerDeclined Kind = "server_declined"
)

// GatewayError is the single error type returned across the client boundary
//
// A business decline (issuer did not approve) is NOT a GatewayError: it arrives as a
// normal response whose approval code is empty.
type GatewayError struct {
	Kind    Kind
	Message string

	// Violations holds every validation message (KindValidation only)
	Violations []string

	// StatusCode and ErrorMessage are set for KindServerDeclined
	StatusCode   int
	ErrorMessage *messages.ErrorMessage
	// RawBody is kept when the error body could not be parsed
	RawBody string

	// TerminalDateTime is the mws-date of the failing call, for correlation with gateway logs
	TerminalDateTime string

	Err error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.ErrorMessage != nil && e.ErrorMessage.Reason != "" {
		fmt.Fprintf(&b, " (gateway: %s)", e.ErrorMessage.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsRetriable reports whether repeating the same call may succeed
// Only transport failures qualify; the client never retries on its own.
func (e *GatewayError) IsRetriable() bool {
	return e.Kind == KindTransport
}

// NewValidationError joins all violations, one per line, into a single error
func NewValidationError(violations ...string) *GatewayError {
	return &GatewayError{
		Kind:       KindValidation,
		Message:    strings.Join(violations, "\n"),
		Violations: violations,
	}
}

// NewSigningError creates a fatal signing error
func NewSigningError(message string, cause error) *GatewayError {
	return &GatewayError{
		Kind:    KindSigning,
		Message: message,
		Err:     cause,
	}
}

// NewTransportError wraps a network or stream failure
func NewTransportError(message, terminalDateTime string, cause error) *GatewayError {
	return &GatewayError{
		Kind:             KindTransport,
		Message:          message,
		TerminalDateTime: terminalDateTime,
		Err:              cause,
	}
}

// NewServerDeclinedError creates an error for a non-success gateway status
// errMsg may be nil when the body did not parse; rawBody is kept in that case.
func NewServerDeclinedError(message string, statusCode int, errMsg *messages.ErrorMessage, rawBody, terminalDateTime string) *GatewayError {
	e := &GatewayError{
		Kind:             KindServerDeclined,
		Message:          message,
		StatusCode:       statusCode,
		ErrorMessage:     errMsg,
		TerminalDateTime: terminalDateTime,
	}
	if errMsg == nil {
		e.RawBody = rawBody
	}
	return e
}

// KindOf returns the kind of the first GatewayError in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var ge *GatewayError
	if stderrors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// IsKind reports whether err carries a GatewayError of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
