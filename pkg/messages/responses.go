package messages

// Authorization is the gateway's answer to an AuthorizationRequest
// A declined authorization is still an Authorization: ApprovalCode is empty and Reason is set.
type Authorization struct {
	AuthorizationGUID   string `xml:"authorizationGuid,omitempty"`
	Reason              string `xml:"reason,omitempty"`
	Amount              string `xml:"amount,omitempty"`
	Currency            string `xml:"currency,omitempty"`
	CardTypeName        string `xml:"cardTypeName,omitempty"`
	MaskedCardNumber    string `xml:"maskedCardNumber,omitempty"`
	ExpiryDateMMYY      string `xml:"expiryDateMMYY,omitempty"`
	CustomerReference   string `xml:"customerReference,omitempty"`
	ApprovalCode        string `xml:"approvalCode,omitempty"`
	IssuerResponseText  string `xml:"issuerResponseText,omitempty"`
	ServerDateTime      string `xml:"serverDateTime,omitempty"`
	TerminalDateTime    string `xml:"terminalDateTime,omitempty"`
	AgreementNumber     string `xml:"agreementNumber,omitempty"`
	CardAcceptorName    string `xml:"cardAcceptorName,omitempty"`
	CardAcceptorAddress string `xml:"cardAcceptorAddress,omitempty"`
	TransNumber         string `xml:"transNumber,omitempty"`
	BatchNumber         string `xml:"batchNumber,omitempty"`
	F25                 string `xml:"f25,omitempty"`
}

// Approved reports whether the issuer approved the authorization
func (a *Authorization) Approved() bool {
	return a.ApprovalCode != ""
}

// Payment is the gateway's answer to a PaymentRequest
type Payment struct {
	PaymentGUID         string `xml:"paymentGuid,omitempty"`
	AuthorizationGUID   string `xml:"authorizationGuid,omitempty"`
	Reason              string `xml:"reason,omitempty"`
	Amount              string `xml:"amount,omitempty"`
	Currency            string `xml:"currency,omitempty"`
	CardTypeName        string `xml:"cardTypeName,omitempty"`
	MaskedCardNumber    string `xml:"maskedCardNumber,omitempty"`
	ExpiryDateMMYY      string `xml:"expiryDateMMYY,omitempty"`
	CustomerReference   string `xml:"customerReference,omitempty"`
	ApprovalCode        string `xml:"approvalCode,omitempty"`
	IssuerResponseText  string `xml:"issuerResponseText,omitempty"`
	ServerDateTime      string `xml:"serverDateTime,omitempty"`
	TerminalDateTime    string `xml:"terminalDateTime,omitempty"`
	AgreementNumber     string `xml:"agreementNumber,omitempty"`
	CardAcceptorName    string `xml:"cardAcceptorName,omitempty"`
	CardAcceptorAddress string `xml:"cardAcceptorAddress,omitempty"`
}

// Approved reports whether the issuer approved the payment
func (p *Payment) Approved() bool {
	return p.ApprovalCode != ""
}

// Refund is the gateway's answer to a RefundRequest
type Refund struct {
	RefundGUID          string `xml:"refundGuid,omitempty"`
	PaymentGUID         string `xml:"paymentGuid,omitempty"`
	Amount              string `xml:"amount,omitempty"`
	Currency            string `xml:"currency,omitempty"`
	CardTypeName        string `xml:"cardTypeName,omitempty"`
	MaskedCardNumber    string `xml:"maskedCardNumber,omitempty"`
	ExpiryDateMMYY      string `xml:"expiryDateMMYY,omitempty"`
	CustomerReference   string `xml:"customerReference,omitempty"`
	ApprovalCode        string `xml:"approvalCode,omitempty"`
	IssuerResponseText  string `xml:"issuerResponseText,omitempty"`
	ServerDateTime      string `xml:"serverDateTime,omitempty"`
	TerminalDateTime    string `xml:"terminalDateTime,omitempty"`
	AgreementNumber     string `xml:"agreementNumber,omitempty"`
	CardAcceptorName    string `xml:"cardAcceptorName,omitempty"`
	CardAcceptorAddress string `xml:"cardAcceptorAddress,omitempty"`
}

// Approved reports whether the refund was accepted
func (r *Refund) Approved() bool {
	return r.ApprovalCode != ""
}

// Reversal is the gateway's answer to a ReversalRequest
type Reversal struct {
	ReversalGUID       string `xml:"reversalGuid,omitempty"`
	PaymentGUID        string `xml:"paymentGuid,omitempty"`
	AuthorizationGUID  string `xml:"authorizationGuid,omitempty"`
	RefundGUID         string `xml:"refundGuid,omitempty"`
	Reason             string `xml:"reason,omitempty"`
	Amount             string `xml:"amount,omitempty"`
	Currency           string `xml:"currency,omitempty"`
	CardTypeName       string `xml:"cardTypeName,omitempty"`
	MaskedCardNumber   string `xml:"maskedCardNumber,omitempty"`
	CustomerReference  string `xml:"customerReference,omitempty"`
	ApprovalCode       string `xml:"approvalCode,omitempty"`
	IssuerResponseText string `xml:"issuerResponseText,omitempty"`
	ServerDateTime     string `xml:"serverDateTime,omitempty"`
	TerminalDateTime   string `xml:"terminalDateTime,omitempty"`
}

// Approved reports whether the reversal was accepted
func (r *Reversal) Approved() bool {
	return r.ApprovalCode != ""
}

// Cancellation is the gateway's answer to a CancellationRequest
type Cancellation struct {
	TransactionType    string `xml:"transactionType,omitempty"`
	Currency           string `xml:"currency,omitempty"`
	Amount             string `xml:"amount,omitempty"`
	Reason             string `xml:"reason,omitempty"`
	ApprovalCode       string `xml:"approvalCode,omitempty"`
	IssuerResponseText string `xml:"issuerResponseText,omitempty"`
	ServerDateTime     string `xml:"serverDateTime,omitempty"`
	TerminalDateTime   string `xml:"terminalDateTime,omitempty"`
}

// Token is a stored card reference as held by the gateway's token store
type Token struct {
	Token            string `xml:"token,omitempty"`
	MaskedCardNumber string `xml:"maskedCardNumber,omitempty"`
	ExpiryDateMMYY   string `xml:"expiryDateMMYY,omitempty"`
	CardTypeName     string `xml:"cardTypeName,omitempty"`
}

// ErrorMessage is the body the gateway sends with every non-success status
type ErrorMessage struct {
	Reason  string   `xml:"reason,omitempty"`
	Details []string `xml:"details>detail,omitempty"`
}
