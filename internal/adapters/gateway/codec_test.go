package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/ecommerce-client/pkg/messages"
)

func TestEncode_Authorization(t *testing.T) {
	req := messages.AuthorizationRequest{
		PaymentScenario: messages.PaymentScenarioWeb,
		Currency:        "ISK",
		Amount:          "70.00",
		CardNumber:      "4222222222222",
		ExpiryDateMMYY:  "1215",
	}

	body, err := Encode(req)
	require.NoError(t, err)

	want := XMLHeader +
		"<authorization>\n" +
		"    <paymentScenario>WEB</paymentScenario>\n" +
		"    <currency>ISK</currency>\n" +
		"    <amount>70.00</amount>\n" +
		"    <cardNumber>4222222222222</cardNumber>\n" +
		"    <expiryDateMMYY>1215</expiryDateMMYY>\n" +
		"</authorization>"
	assert.Equal(t, want, string(body))
}

func TestEncode_Deterministic(t *testing.T) {
	req := messages.RefundRequest{
		PaymentGUID: "0b9c3b1e-7a4e-4b55-9d9f-8a8b0fb7a7c1",
		Currency:    "EUR",
		Amount:      "12.50",
	}

	first, err := Encode(req)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Encode(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncode_EscapesText(t *testing.T) {
	body, err := Encode(messages.ReversalRequest{CustomerReference: `a<b&"c"`})
	require.NoError(t, err)
	assert.Contains(t, string(body), "<customerReference>a&lt;b&amp;&#34;c&#34;</customerReference>")
}

func TestDecode_RoundTrip(t *testing.T) {
	want := messages.Authorization{
		AuthorizationGUID: "4e0b3b9c-0000-4000-8000-000000000001",
		Amount:            "70.00",
		Currency:          "ISK",
		CardTypeName:      "VISA",
		MaskedCardNumber:  "*********2222",
		ApprovalCode:      "123456",
		TerminalDateTime:  "20130301120000000",
	}

	body, err := Encode(want)
	require.NoError(t, err)

	var got messages.Authorization
	require.NoError(t, Decode(body, &got))
	assert.Equal(t, want, got)
}

func TestDecode_ToleratesMissingAndUnknownElements(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<tokenStore>
    <token>abc</token>
    <somethingNew>ignored</somethingNew>
</tokenStore>`)

	var got messages.Token
	require.NoError(t, Decode(body, &got))
	assert.Equal(t, "abc", got.Token)
	assert.Empty(t, got.MaskedCardNumber)
}

func TestDecode_ErrorMessage(t *testing.T) {
	body := []byte(`<error><reason>Invalid request</reason><details><detail>amount is required</detail><detail>currency is required</detail></details></error>`)

	var got messages.ErrorMessage
	require.NoError(t, Decode(body, &got))
	assert.Equal(t, "Invalid request", got.Reason)
	assert.Equal(t, []string{"amount is required", "currency is required"}, got.Details)
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"wrong root", "<payment><amount>1.00</amount></payment>"},
		{"not xml", "Internal Server Error"},
		{"truncated", "<authorization><amount>1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got messages.Authorization
			assert.Error(t, Decode([]byte(tt.body), &got))
		})
	}
}

func TestRedactBody(t *testing.T) {
	body := []byte(`<authorization><cardNumber>4222222222222</cardNumber><cardVerificationCode>123</cardVerificationCode><amount>70.00</amount></authorization>`)

	got := RedactBody(body)

	assert.NotContains(t, got, "4222222222222")
	assert.NotContains(t, got, ">123<")
	assert.Contains(t, got, "<cardNumber>****2222</cardNumber>")
	assert.Contains(t, got, "<amount>70.00</amount>")
}

func TestRedactBody_AnyCardNumberFormat(t *testing.T) {
	tests := []struct {
		name string
		card string
		want string
	}{
		{name: "dashes", card: "4222-2222-2222-2222", want: "<cardNumber>****2222</cardNumber>"},
		{name: "spaces", card: " 4222 2222 2222 1881 ", want: "<cardNumber>****1881</cardNumber>"},
		{name: "letters mixed in", card: "x4222y2222z3456", want: "<cardNumber>****3456</cardNumber>"},
		{name: "too short", card: "12-3", want: "<cardNumber>****</cardNumber>"},
		{name: "empty", card: "", want: "<cardNumber>****</cardNumber>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactBody([]byte("<payment><cardNumber>" + tt.card + "</cardNumber></payment>"))
			assert.Contains(t, got, tt.want)
			if tt.card != "" {
				assert.NotContains(t, got, tt.card)
			}
		})
	}
}

func assertRoundTrip[T any, PT interface {
	*T
	messages.Element
}](t *testing.T, want T) {
	t.Helper()

	body, err := Encode(PT(&want))
	require.NoError(t, err)

	var got T
	require.NoError(t, Decode(body, PT(&got)))
	assert.Equal(t, want, got)
}

func TestEncodeDecode_RoundTripEveryRecord(t *testing.T) {
	const (
		guid = "4e0b3b9c-0000-4000-8000-000000000001"
		ts   = "20130301120000000"
	)

	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"authorization request", func(t *testing.T) {
			assertRoundTrip(t, messages.AuthorizationRequest{
				PaymentScenario: messages.PaymentScenarioWeb, Currency: "ISK", Amount: "70.00",
				Token: "tok-1", CardNumber: "4222222222222", ExpiryDateMMYY: "1215",
				CardVerificationCode: "123", CustomerReference: "order-1",
			})
		}},
		{"payment request", func(t *testing.T) {
			assertRoundTrip(t, messages.PaymentRequest{
				AuthorizationGUID: guid, PaymentScenario: messages.PaymentScenarioWeb, Currency: "EUR",
				Amount: "12.50", Token: "tok-1", CardNumber: "4222222222222", ExpiryDateMMYY: "1215",
				CardVerificationCode: "123", CustomerReference: "order-2",
			})
		}},
		{"refund request", func(t *testing.T) {
			assertRoundTrip(t, messages.RefundRequest{
				PaymentGUID: guid, PaymentScenario: messages.PaymentScenarioWeb, Currency: "USD",
				Amount: "5.00", Token: "tok-1", CardNumber: "4222222222222", ExpiryDateMMYY: "1215",
				CustomerReference: "order-3",
			})
		}},
		{"reversal request", func(t *testing.T) {
			assertRoundTrip(t, messages.ReversalRequest{
				PaymentGUID: guid, AuthorizationGUID: guid, RefundGUID: guid, CustomerReference: "order-4",
			})
		}},
		{"cancellation request", func(t *testing.T) {
			assertRoundTrip(t, messages.CancellationRequest{
				TransactionType: messages.TransactionTypePayment, Currency: "GBP", Amount: "9.99", TerminalDateTime: ts,
			})
		}},
		{"token request", func(t *testing.T) {
			assertRoundTrip(t, messages.TokenRequest{CardNumber: "4222222222222", ExpiryDateMMYY: "1215"})
		}},
		{"authorization", func(t *testing.T) {
			assertRoundTrip(t, messages.Authorization{
				AuthorizationGUID: guid, Reason: "Declined", Amount: "70.00", Currency: "ISK",
				CardTypeName: "VISA", MaskedCardNumber: "*********2222", ExpiryDateMMYY: "1215",
				CustomerReference: "order-1", ApprovalCode: "123456", IssuerResponseText: "Approved",
				ServerDateTime: ts, TerminalDateTime: ts, AgreementNumber: "9990001",
				CardAcceptorName: "Shop", CardAcceptorAddress: "Street 1", TransNumber: "42",
				BatchNumber: "7", F25: "00",
			})
		}},
		{"payment", func(t *testing.T) {
			assertRoundTrip(t, messages.Payment{
				PaymentGUID: guid, AuthorizationGUID: guid, Reason: "Declined", Amount: "12.50",
				Currency: "EUR", CardTypeName: "VISA", MaskedCardNumber: "*********2222",
				ExpiryDateMMYY: "1215", CustomerReference: "order-2", ApprovalCode: "654321",
				IssuerResponseText: "Approved", ServerDateTime: ts, TerminalDateTime: ts,
				AgreementNumber: "9990001", CardAcceptorName: "Shop", CardAcceptorAddress: "Street 1",
			})
		}},
		{"refund", func(t *testing.T) {
			assertRoundTrip(t, messages.Refund{
				RefundGUID: guid, PaymentGUID: guid, Amount: "5.00", Currency: "USD",
				CardTypeName: "MASTERCARD", MaskedCardNumber: "************4444", ExpiryDateMMYY: "1215",
				CustomerReference: "order-3", ApprovalCode: "111111", IssuerResponseText: "Approved",
				ServerDateTime: ts, TerminalDateTime: ts, AgreementNumber: "9990001",
				CardAcceptorName: "Shop", CardAcceptorAddress: "Street 1",
			})
		}},
		{"reversal", func(t *testing.T) {
			assertRoundTrip(t, messages.Reversal{
				ReversalGUID: guid, PaymentGUID: guid, AuthorizationGUID: guid, RefundGUID: guid,
				Reason: "Reversed", Amount: "70.00", Currency: "ISK", CardTypeName: "VISA",
				MaskedCardNumber: "*********2222", CustomerReference: "order-4", ApprovalCode: "222222",
				IssuerResponseText: "Reversed", ServerDateTime: ts, TerminalDateTime: ts,
			})
		}},
		{"cancellation", func(t *testing.T) {
			assertRoundTrip(t, messages.Cancellation{
				TransactionType: messages.TransactionTypeRefund, Currency: "GBP", Amount: "9.99",
				Reason: "Cancelled", ApprovalCode: "333333", IssuerResponseText: "Cancelled",
				ServerDateTime: ts, TerminalDateTime: ts,
			})
		}},
		{"token", func(t *testing.T) {
			assertRoundTrip(t, messages.Token{
				Token: "tok-1", MaskedCardNumber: "*********2222", ExpiryDateMMYY: "1215", CardTypeName: "VISA",
			})
		}},
		{"error message", func(t *testing.T) {
			assertRoundTrip(t, messages.ErrorMessage{
				Reason:  "Invalid request",
				Details: []string{"amount is required", "currency is required"},
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.run)
	}
}
