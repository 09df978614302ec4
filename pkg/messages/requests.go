package messages

// PaymentScenarioWeb is the payment scenario tag sent on every client-originated transaction
const PaymentScenarioWeb = "WEB"

// Transaction type tags used by cancellation requests
const (
	TransactionTypeAuthorization = "authorization"
	TransactionTypePayment       = "payment"
	TransactionTypeRefund        = "refund"
)

// AuthorizationRequest reserves funds on a card
// Cardholder data is referenced by a token, by card number and expiry, or by both
// (the latter stores the card under the given token).
type AuthorizationRequest struct {
	PaymentScenario      string `xml:"paymentScenario,omitempty"`
	Currency             string `xml:"currency,omitempty"`
	Amount               string `xml:"amount,omitempty"`
	Token                string `xml:"token,omitempty"`
	CardNumber           string `xml:"cardNumber,omitempty"`
	ExpiryDateMMYY       string `xml:"expiryDateMMYY,omitempty"`
	CardVerificationCode string `xml:"cardVerificationCode,omitempty"`
	CustomerReference    string `xml:"customerReference,omitempty"`
}

// PaymentRequest charges a card directly or captures a prior authorization
type PaymentRequest struct {
	AuthorizationGUID    string `xml:"authorizationGuid,omitempty"`
	PaymentScenario      string `xml:"paymentScenario,omitempty"`
	Currency             string `xml:"currency,omitempty"`
	Amount               string `xml:"amount,omitempty"`
	Token                string `xml:"token,omitempty"`
	CardNumber           string `xml:"cardNumber,omitempty"`
	ExpiryDateMMYY       string `xml:"expiryDateMMYY,omitempty"`
	CardVerificationCode string `xml:"cardVerificationCode,omitempty"`
	CustomerReference    string `xml:"customerReference,omitempty"`
}

// RefundRequest credits a card directly or refunds a prior payment
type RefundRequest struct {
	PaymentGUID       string `xml:"paymentGuid,omitempty"`
	PaymentScenario   string `xml:"paymentScenario,omitempty"`
	Currency          string `xml:"currency,omitempty"`
	Amount            string `xml:"amount,omitempty"`
	Token             string `xml:"token,omitempty"`
	CardNumber        string `xml:"cardNumber,omitempty"`
	ExpiryDateMMYY    string `xml:"expiryDateMMYY,omitempty"`
	CustomerReference string `xml:"customerReference,omitempty"`
}

// ReversalRequest undoes an unsettled authorization, payment or refund
type ReversalRequest struct {
	PaymentGUID       string `xml:"paymentGuid,omitempty"`
	AuthorizationGUID string `xml:"authorizationGuid,omitempty"`
	RefundGUID        string `xml:"refundGuid,omitempty"`
	CustomerReference string `xml:"customerReference,omitempty"`
}

// CancellationRequest voids a transaction identified by its original terminal timestamp
type CancellationRequest struct {
	TransactionType  string `xml:"transactionType,omitempty"`
	Currency         string `xml:"currency,omitempty"`
	Amount           string `xml:"amount,omitempty"`
	TerminalDateTime string `xml:"terminalDateTime,omitempty"` // yyyyMMddHHmmssSSS of the original call
}

// TokenRequest creates or replaces the card stored under a token
type TokenRequest struct {
	CardNumber     string `xml:"cardNumber,omitempty"`
	ExpiryDateMMYY string `xml:"expiryDateMMYY,omitempty"`
}
