// Package payload validates caller-supplied fields and builds wire request records.
package payload

import (
	"fmt"

	"github.com/kevin07696/ecommerce-client/pkg/messages"
)

const (
	msgInvalidCardData   = "Invalid card data. Must include either token or card number and expiry date"
	msgReversalReference = "Reversal request must include one of authorizationGuid, paymentGuid or refundGuid"
	msgFourCharacters    = "must be four characters"
)

// Kind names the request type being built
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindPayment       Kind = "payment"
	KindRefund        Kind = "refund"
	KindReversal      Kind = "reversal"
	KindCancellation  Kind = "cancellation"
	KindToken         Kind = "token"
)

// Fields is the flat set of values a caller may supply for any request kind.
// Fields a kind does not use are ignored. An empty string means unset.
type Fields struct {
	PaymentScenario      string
	Currency             string
	Amount               string
	Token                string
	CardNumber           string
	ExpiryDateMMYY       string
	CardVerificationCode string
	CustomerReference    string
	AuthorizationGUID    string
	PaymentGUID          string
	RefundGUID           string
	TransactionType      string
	TerminalDateTime     string
}

// Build validates f for kind and returns the request record ready for encoding
func Build(kind Kind, f Fields) (messages.Element, error) {
	switch kind {
	case KindAuthorization:
		return element(Authorization(messages.AuthorizationRequest{
			PaymentScenario:      f.PaymentScenario,
			Currency:             f.Currency,
			Amount:               f.Amount,
			Token:                f.Token,
			CardNumber:           f.CardNumber,
			ExpiryDateMMYY:       f.ExpiryDateMMYY,
			CardVerificationCode: f.CardVerificationCode,
			CustomerReference:    f.CustomerReference,
		}))
	case KindPayment:
		return element(Payment(messages.PaymentRequest{
			AuthorizationGUID:    f.AuthorizationGUID,
			PaymentScenario:      f.PaymentScenario,
			Currency:             f.Currency,
			Amount:               f.Amount,
			Token:                f.Token,
			CardNumber:           f.CardNumber,
			ExpiryDateMMYY:       f.ExpiryDateMMYY,
			CardVerificationCode: f.CardVerificationCode,
			CustomerReference:    f.CustomerReference,
		}))
	case KindRefund:
		return element(Refund(messages.RefundRequest{
			PaymentGUID:       f.PaymentGUID,
			PaymentScenario:   f.PaymentScenario,
			Currency:          f.Currency,
			Amount:            f.Amount,
			Token:             f.Token,
			CardNumber:        f.CardNumber,
			ExpiryDateMMYY:    f.ExpiryDateMMYY,
			CustomerReference: f.CustomerReference,
		}))
	case KindReversal:
		return element(Reversal(messages.ReversalRequest{
			PaymentGUID:       f.PaymentGUID,
			AuthorizationGUID: f.AuthorizationGUID,
			RefundGUID:        f.RefundGUID,
			CustomerReference: f.CustomerReference,
		}))
	case KindCancellation:
		return element(Cancellation(messages.CancellationRequest{
			TransactionType:  f.TransactionType,
			Currency:         f.Currency,
			Amount:           f.Amount,
			TerminalDateTime: f.TerminalDateTime,
		}))
	case KindToken:
		return element(Token(messages.TokenRequest{
			CardNumber:     f.CardNumber,
			ExpiryDateMMYY: f.ExpiryDateMMYY,
		}))
	default:
		return nil, fmt.Errorf("unknown request kind %q", kind)
	}
}

var authorizationPipeline = Pipeline[messages.AuthorizationRequest]{
	Field: []Rule[messages.AuthorizationRequest]{
		required("paymentScenario", func(r *messages.AuthorizationRequest) string { return r.PaymentScenario }),
		required("currency", func(r *messages.AuthorizationRequest) string { return r.Currency }),
		supportedCurrency(func(r *messages.AuthorizationRequest) string { return r.Currency }),
		required("amount", func(r *messages.AuthorizationRequest) string { return r.Amount }),
		decimalAmount(func(r *messages.AuthorizationRequest) string { return r.Amount }),
		exactLength("expiryDateMMYY", 4, false, msgFourCharacters, func(r *messages.AuthorizationRequest) string { return r.ExpiryDateMMYY }),
	},
	Cross: []Rule[messages.AuthorizationRequest]{
		func(r *messages.AuthorizationRequest) []string {
			return cardholderData(r.Token, r.CardNumber, r.ExpiryDateMMYY, "")
		},
	},
}

var paymentPipeline = Pipeline[messages.PaymentRequest]{
	Field: []Rule[messages.PaymentRequest]{
		required("paymentScenario", func(r *messages.PaymentRequest) string { return r.PaymentScenario }),
		required("currency", func(r *messages.PaymentRequest) string { return r.Currency }),
		supportedCurrency(func(r *messages.PaymentRequest) string { return r.Currency }),
		required("amount", func(r *messages.PaymentRequest) string { return r.Amount }),
		decimalAmount(func(r *messages.PaymentRequest) string { return r.Amount }),
		exactLength("expiryDateMMYY", 4, false, msgFourCharacters, func(r *messages.PaymentRequest) string { return r.ExpiryDateMMYY }),
	},
	Cross: []Rule[messages.PaymentRequest]{
		func(r *messages.PaymentRequest) []string {
			return cardholderData(r.Token, r.CardNumber, r.ExpiryDateMMYY, r.AuthorizationGUID)
		},
	},
}

var refundPipeline = Pipeline[messages.RefundRequest]{
	Field: []Rule[messages.RefundRequest]{
		required("paymentScenario", func(r *messages.RefundRequest) string { return r.PaymentScenario }),
		required("currency", func(r *messages.RefundRequest) string { return r.Currency }),
		supportedCurrency(func(r *messages.RefundRequest) string { return r.Currency }),
		required("amount", func(r *messages.RefundRequest) string { return r.Amount }),
		decimalAmount(func(r *messages.RefundRequest) string { return r.Amount }),
		exactLength("expiryDateMMYY", 4, false, msgFourCharacters, func(r *messages.RefundRequest) string { return r.ExpiryDateMMYY }),
	},
	Cross: []Rule[messages.RefundRequest]{
		func(r *messages.RefundRequest) []string {
			return cardholderData(r.Token, r.CardNumber, r.ExpiryDateMMYY, r.PaymentGUID)
		},
	},
}

var reversalPipeline = Pipeline[messages.ReversalRequest]{
	Cross: []Rule[messages.ReversalRequest]{
		anyOf(msgReversalReference, func(r *messages.ReversalRequest) []string {
			return []string{r.AuthorizationGUID, r.PaymentGUID, r.RefundGUID}
		}),
	},
}

var cancellationTypes = []string{
	messages.TransactionTypeAuthorization,
	messages.TransactionTypePayment,
	messages.TransactionTypeRefund,
}

var cancellationPipeline = Pipeline[messages.CancellationRequest]{
	Field: []Rule[messages.CancellationRequest]{
		required("transactionType", func(r *messages.CancellationRequest) string { return r.TransactionType }),
		oneOf("transactionType", cancellationTypes, func(r *messages.CancellationRequest) string { return r.TransactionType }),
		required("currency", func(r *messages.CancellationRequest) string { return r.Currency }),
		supportedCurrency(func(r *messages.CancellationRequest) string { return r.Currency }),
		decimalAmount(func(r *messages.CancellationRequest) string { return r.Amount }),
		required("terminalDateTime", func(r *messages.CancellationRequest) string { return r.TerminalDateTime }),
		terminalDateTime(func(r *messages.CancellationRequest) string { return r.TerminalDateTime }),
	},
}

var tokenPipeline = Pipeline[messages.TokenRequest]{
	Field: []Rule[messages.TokenRequest]{
		required("cardNumber", func(r *messages.TokenRequest) string { return r.CardNumber }),
		required("expiryDateMMYY", func(r *messages.TokenRequest) string { return r.ExpiryDateMMYY }),
		exactLength("expiryDateMMYY", 4, true, msgFourCharacters, func(r *messages.TokenRequest) string { return r.ExpiryDateMMYY }),
	},
}

func element(req messages.Element, err error) (messages.Element, error) {
	if err != nil {
		return nil, err
	}
	return req, nil
}

// cardholderData passes when a token, a card number with expiry, or a
// prior-transaction GUID identifies the card
func cardholderData(token, cardNumber, expiry, priorGUID string) []string {
	if token != "" || (cardNumber != "" && expiry != "") || priorGUID != "" {
		return nil
	}
	return []string{msgInvalidCardData}
}

func Authorization(req messages.AuthorizationRequest) (messages.AuthorizationRequest, error) {
	if err := authorizationPipeline.Validate(&req); err != nil {
		return messages.AuthorizationRequest{}, err
	}
	return req, nil
}

func Payment(req messages.PaymentRequest) (messages.PaymentRequest, error) {
	if err := paymentPipeline.Validate(&req); err != nil {
		return messages.PaymentRequest{}, err
	}
	return req, nil
}

func Refund(req messages.RefundRequest) (messages.RefundRequest, error) {
	if err := refundPipeline.Validate(&req); err != nil {
		return messages.RefundRequest{}, err
	}
	return req, nil
}

func Reversal(req messages.ReversalRequest) (messages.ReversalRequest, error) {
	if err := reversalPipeline.Validate(&req); err != nil {
		return messages.ReversalRequest{}, err
	}
	return req, nil
}

func Cancellation(req messages.CancellationRequest) (messages.CancellationRequest, error) {
	if err := cancellationPipeline.Validate(&req); err != nil {
		return messages.CancellationRequest{}, err
	}
	return req, nil
}

func Token(req messages.TokenRequest) (messages.TokenRequest, error) {
	if err := tokenPipeline.Validate(&req); err != nil {
		return messages.TokenRequest{}, err
	}
	return req, nil
}
