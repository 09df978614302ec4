package messages

// Element is implemented by every record that travels on the wire
// RootElement names the XML document element for the record.
type Element interface {
	RootElement() string
}

func (AuthorizationRequest) RootElement() string { return "authorization" }
func (PaymentRequest) RootElement() string       { return "payment" }
func (RefundRequest) RootElement() string        { return "refund" }
func (ReversalRequest) RootElement() string      { return "reversal" }
func (CancellationRequest) RootElement() string  { return "cancellation" }
func (TokenRequest) RootElement() string         { return "tokenStore" }

func (Authorization) RootElement() string { return "authorization" }
func (Payment) RootElement() string       { return "payment" }
func (Refund) RootElement() string        { return "refund" }
func (Reversal) RootElement() string      { return "reversal" }
func (Cancellation) RootElement() string  { return "cancellation" }
func (Token) RootElement() string         { return "tokenStore" }
func (ErrorMessage) RootElement() string  { return "error" }
