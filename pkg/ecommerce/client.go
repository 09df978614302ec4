// Package ecommerce is a client for the card-payment gateway's e-commerce API.
//
// Every call validates its input, signs the request with the card acceptor's
// shared secret and returns either the gateway's answer or a *errors.GatewayError.
// A declined transaction is not an error: check Approved() on the result.
package ecommerce

import (
	"context"
	"fmt"

	"github.com/kevin07696/ecommerce-client/internal/adapters/gateway"
	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
	"github.com/kevin07696/ecommerce-client/internal/payload"
	pkgerrors "github.com/kevin07696/ecommerce-client/pkg/errors"
	pkghttp "github.com/kevin07696/ecommerce-client/pkg/http"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
)

// Card is cardholder data sent with a transaction or stored under a token
type Card struct {
	Number           string
	ExpiryDateMMYY   string
	VerificationCode string
}

// Transaction describes an authorization, payment or refund.
// Set Card, Token, or both; with both the card is stored under Token.
type Transaction struct {
	Currency          string
	Amount            string
	Card              Card
	Token             string
	CustomerReference string
}

// ReversalTarget names the transactions to reverse
type ReversalTarget struct {
	AuthorizationGUID string
	PaymentGUID       string
	RefundGUID        string
	CustomerReference string
}

// Client talks to one card acceptor's account in one environment.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	env          messages.Environment
	cardAcceptor string
	router       *gateway.Router
	dispatcher   *gateway.Dispatcher
}

// NewClient validates cfg and builds a Client.
// An empty shared secret is reported as a signing GatewayError.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	o := options{logger: ports.NopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = ports.NopLogger{}
	}

	if cfg.CardAcceptor == "" {
		return nil, fmt.Errorf("card acceptor is required")
	}

	router := gateway.NewRouter(gateway.BaseURLs{Live: cfg.BaseURLs.Live, Test: cfg.BaseURLs.Test})
	if _, err := router.BaseURL(cfg.Environment); err != nil {
		return nil, fmt.Errorf("invalid gateway configuration: %w", err)
	}

	signer, err := gateway.NewSigner(cfg.SharedSecret)
	if err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = pkghttp.NewHTTPClient(pkghttp.GatewayClientConfig(cfg.ConnectTimeout, cfg.ReadTimeout))
	}

	dcfg := gateway.DispatcherConfig{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}
	if cfg.CircuitBreaker {
		breaker := gateway.DefaultBreakerConfig()
		dcfg.CircuitBreaker = &breaker
	}

	return &Client{
		env:          cfg.Environment,
		cardAcceptor: cfg.CardAcceptor,
		router:       router,
		dispatcher:   gateway.NewDispatcher(httpClient, signer, o.logger, dcfg, gateway.WithClock(o.clock)),
	}, nil
}

// Authorize reserves funds on a card
func (c *Client) Authorize(ctx context.Context, t Transaction) (*messages.Authorization, error) {
	var out messages.Authorization
	if err := c.call(ctx, gateway.OpAuthorization, payload.KindAuthorization, transactionFields(t), "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pay charges a card directly
func (c *Client) Pay(ctx context.Context, t Transaction) (*messages.Payment, error) {
	var out messages.Payment
	if err := c.call(ctx, gateway.OpPayment, payload.KindPayment, transactionFields(t), "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CaptureAuthorization turns an approved authorization into a payment
func (c *Client) CaptureAuthorization(ctx context.Context, currency, amount, authorizationGUID string) (*messages.Payment, error) {
	f := payload.Fields{
		PaymentScenario:   messages.PaymentScenarioWeb,
		Currency:          currency,
		Amount:            amount,
		AuthorizationGUID: authorizationGUID,
	}

	var out messages.Payment
	if err := c.call(ctx, gateway.OpPayment, payload.KindPayment, f, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refund credits a card directly
func (c *Client) Refund(ctx context.Context, t Transaction) (*messages.Refund, error) {
	f := transactionFields(t)

	var out messages.Refund
	if err := c.call(ctx, gateway.OpRefund, payload.KindRefund, f, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefundPayment refunds all or part of a prior payment
func (c *Client) RefundPayment(ctx context.Context, currency, amount, paymentGUID string) (*messages.Refund, error) {
	f := payload.Fields{
		PaymentScenario: messages.PaymentScenarioWeb,
		Currency:        currency,
		Amount:          amount,
		PaymentGUID:     paymentGUID,
	}

	var out messages.Refund
	if err := c.call(ctx, gateway.OpRefund, payload.KindRefund, f, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reverse undoes unsettled transactions. At least one GUID must be set.
func (c *Client) Reverse(ctx context.Context, target ReversalTarget) (*messages.Reversal, error) {
	f := payload.Fields{
		AuthorizationGUID: target.AuthorizationGUID,
		PaymentGUID:       target.PaymentGUID,
		RefundGUID:        target.RefundGUID,
		CustomerReference: target.CustomerReference,
	}

	var out messages.Reversal
	if err := c.call(ctx, gateway.OpReversal, payload.KindReversal, f, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReverseAuthorization(ctx context.Context, authorizationGUID, customerReference string) (*messages.Reversal, error) {
	return c.Reverse(ctx, ReversalTarget{AuthorizationGUID: authorizationGUID, CustomerReference: customerReference})
}

func (c *Client) ReversePayment(ctx context.Context, paymentGUID, customerReference string) (*messages.Reversal, error) {
	return c.Reverse(ctx, ReversalTarget{PaymentGUID: paymentGUID, CustomerReference: customerReference})
}

func (c *Client) ReverseRefund(ctx context.Context, refundGUID, customerReference string) (*messages.Reversal, error) {
	return c.Reverse(ctx, ReversalTarget{RefundGUID: refundGUID, CustomerReference: customerReference})
}

// CancelAuthorization voids the authorization sent at originalTerminalDateTime
func (c *Client) CancelAuthorization(ctx context.Context, currency, amount, originalTerminalDateTime string) (*messages.Cancellation, error) {
	return c.cancel(ctx, messages.TransactionTypeAuthorization, currency, amount, originalTerminalDateTime)
}

// CancelPayment voids the payment sent at originalTerminalDateTime
func (c *Client) CancelPayment(ctx context.Context, currency, amount, originalTerminalDateTime string) (*messages.Cancellation, error) {
	return c.cancel(ctx, messages.TransactionTypePayment, currency, amount, originalTerminalDateTime)
}

// CancelRefund voids the refund sent at originalTerminalDateTime
func (c *Client) CancelRefund(ctx context.Context, currency, amount, originalTerminalDateTime string) (*messages.Cancellation, error) {
	return c.cancel(ctx, messages.TransactionTypeRefund, currency, amount, originalTerminalDateTime)
}

func (c *Client) cancel(ctx context.Context, transactionType, currency, amount, terminalDateTime string) (*messages.Cancellation, error) {
	f := payload.Fields{
		TransactionType:  transactionType,
		Currency:         currency,
		Amount:           amount,
		TerminalDateTime: terminalDateTime,
	}

	var out messages.Cancellation
	if err := c.call(ctx, gateway.OpCancellation, payload.KindCancellation, f, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateToken stores card under a new token
func (c *Client) CreateToken(ctx context.Context, token string, card Card) (*messages.Token, error) {
	return c.storeToken(ctx, gateway.OpTokenCreate, token, card)
}

// UpdateToken replaces the card stored under an existing token
func (c *Client) UpdateToken(ctx context.Context, token string, card Card) (*messages.Token, error) {
	return c.storeToken(ctx, gateway.OpTokenUpdate, token, card)
}

func (c *Client) storeToken(ctx context.Context, op gateway.Operation, token string, card Card) (*messages.Token, error) {
	f := payload.Fields{CardNumber: card.Number, ExpiryDateMMYY: card.ExpiryDateMMYY}

	var out messages.Token
	if err := c.call(ctx, op, payload.KindToken, f, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetToken reads the masked card stored under token
func (c *Client) GetToken(ctx context.Context, token string) (*messages.Token, error) {
	var out messages.Token
	if err := c.call(ctx, gateway.OpTokenRead, "", payload.Fields{}, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteToken removes token and returns what was stored under it
func (c *Client) DeleteToken(ctx context.Context, token string) (*messages.Token, error) {
	var out messages.Token
	if err := c.call(ctx, gateway.OpTokenDelete, "", payload.Fields{}, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call runs one operation. kind is empty for operations without a body.
func (c *Client) call(ctx context.Context, op gateway.Operation, kind payload.Kind, f payload.Fields, tokenName string, out messages.Element) error {
	if op.Family == gateway.FamilyToken && tokenName == "" {
		return pkgerrors.NewValidationError("token is required")
	}

	var body []byte
	if kind != "" {
		req, err := payload.Build(kind, f)
		if err != nil {
			return err
		}
		if body, err = gateway.Encode(req); err != nil {
			return &pkgerrors.GatewayError{Kind: pkgerrors.KindValidation, Message: "request could not be encoded", Err: err}
		}
	}

	url, err := c.router.Resolve(c.env, op, c.cardAcceptor, tokenName)
	if err != nil {
		return &pkgerrors.GatewayError{Kind: pkgerrors.KindValidation, Message: "could not resolve gateway URL", Err: err}
	}

	return c.dispatcher.Dispatch(ctx, gateway.Call{Operation: op, URL: url, Body: body}, out)
}

func transactionFields(t Transaction) payload.Fields {
	return payload.Fields{
		PaymentScenario:      messages.PaymentScenarioWeb,
		Currency:             t.Currency,
		Amount:               t.Amount,
		Token:                t.Token,
		CardNumber:           t.Card.Number,
		ExpiryDateMMYY:       t.Card.ExpiryDateMMYY,
		CardVerificationCode: t.Card.VerificationCode,
		CustomerReference:    t.CustomerReference,
	}
}
