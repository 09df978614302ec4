package sandbox

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kevin07696/ecommerce-client/internal/adapters/gateway"
	"github.com/kevin07696/ecommerce-client/internal/payload"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
	"github.com/kevin07696/ecommerce-client/pkg/timeutil"
)

// resolveCard finds the card for a transaction. A card number with expiry wins;
// when a token is sent as well the card is stored under it.
func (s *Sandbox) resolveCard(acceptor, token, number, expiry string) (storedCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if number != "" && expiry != "" {
		card := storedCard{number: number, expiry: expiry}
		if token != "" {
			s.tokens[tokenKey(acceptor, token)] = card
		}
		return card, true
	}
	if token != "" {
		card, ok := s.tokens[tokenKey(acceptor, token)]
		return card, ok
	}
	return storedCard{}, false
}

// lookup returns a live transaction of the given kind owned by acceptor
func (s *Sandbox) lookup(acceptor, kind, guid string) (transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[guid]
	if !ok || t.acceptor != acceptor || t.kind != kind || t.reversed || t.cancelled {
		return transaction{}, false
	}
	return *t, true
}

func (s *Sandbox) record(t transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.guid] = &t
}

func (s *Sandbox) handleAuthorization(w http.ResponseWriter, r *http.Request) {
	var in messages.AuthorizationRequest
	if !s.decode(w, r, &in) {
		return
	}
	if _, err := payload.Authorization(in); err != nil {
		s.writeValidation(w, err)
		return
	}

	acceptor := chi.URLParam(r, "cardAcceptor")
	card, ok := s.resolveCard(acceptor, in.Token, in.CardNumber, in.ExpiryDateMMYY)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Token not found")
		return
	}

	terminalDateTime := r.Header.Get(gateway.HeaderDate)
	status, approved := decide(messages.TransactionTypeAuthorization, in.Amount)
	out := messages.Authorization{
		AuthorizationGUID:   uuid.NewString(),
		Amount:              in.Amount,
		Currency:            in.Currency,
		CardTypeName:        cardTypeName(card.number),
		MaskedCardNumber:    maskCardNumber(card.number),
		ExpiryDateMMYY:      card.expiry,
		CustomerReference:   in.CustomerReference,
		ServerDateTime:      timeutil.FormatTerminalDateTime(s.clock()),
		TerminalDateTime:    terminalDateTime,
		AgreementNumber:     agreementNumber,
		CardAcceptorName:    merchantName,
		CardAcceptorAddress: merchantAddress,
	}
	if approved {
		out.ApprovalCode = approvalCode()
		out.IssuerResponseText = "Approved"
		s.record(transaction{
			kind:             messages.TransactionTypeAuthorization,
			acceptor:         acceptor,
			guid:             out.AuthorizationGUID,
			amount:           in.Amount,
			currency:         in.Currency,
			card:             card,
			terminalDateTime: terminalDateTime,
		})
	} else {
		out.Reason = "Declined"
		out.IssuerResponseText = "Declined by issuer"
	}

	s.writeEntity(w, status, out)
}

func (s *Sandbox) handlePayment(w http.ResponseWriter, r *http.Request) {
	var in messages.PaymentRequest
	if !s.decode(w, r, &in) {
		return
	}
	if _, err := payload.Payment(in); err != nil {
		s.writeValidation(w, err)
		return
	}

	acceptor := chi.URLParam(r, "cardAcceptor")
	card, ok := s.resolveCard(acceptor, in.Token, in.CardNumber, in.ExpiryDateMMYY)
	if !ok && in.AuthorizationGUID != "" {
		var auth transaction
		if auth, ok = s.lookup(acceptor, messages.TransactionTypeAuthorization, in.AuthorizationGUID); ok {
			card = auth.card
		}
	}
	if !ok {
		if in.AuthorizationGUID != "" {
			s.writeError(w, http.StatusNotFound, "Authorization not found")
		} else {
			s.writeError(w, http.StatusNotFound, "Token not found")
		}
		return
	}

	terminalDateTime := r.Header.Get(gateway.HeaderDate)
	status, approved := decide(messages.TransactionTypePayment, in.Amount)
	out := messages.Payment{
		PaymentGUID:         uuid.NewString(),
		AuthorizationGUID:   in.AuthorizationGUID,
		Amount:              in.Amount,
		Currency:            in.Currency,
		CardTypeName:        cardTypeName(card.number),
		MaskedCardNumber:    maskCardNumber(card.number),
		ExpiryDateMMYY:      card.expiry,
		CustomerReference:   in.CustomerReference,
		ServerDateTime:      timeutil.FormatTerminalDateTime(s.clock()),
		TerminalDateTime:    terminalDateTime,
		AgreementNumber:     agreementNumber,
		CardAcceptorName:    merchantName,
		CardAcceptorAddress: merchantAddress,
	}
	if approved {
		out.ApprovalCode = approvalCode()
		out.IssuerResponseText = "Approved"
		s.record(transaction{
			kind:             messages.TransactionTypePayment,
			acceptor:         acceptor,
			guid:             out.PaymentGUID,
			amount:           in.Amount,
			currency:         in.Currency,
			card:             card,
			terminalDateTime: terminalDateTime,
		})
	} else {
		out.Reason = "Declined"
		out.IssuerResponseText = "Declined by issuer"
	}

	s.writeEntity(w, status, out)
}

func (s *Sandbox) handleRefund(w http.ResponseWriter, r *http.Request) {
	var in messages.RefundRequest
	if !s.decode(w, r, &in) {
		return
	}
	if _, err := payload.Refund(in); err != nil {
		s.writeValidation(w, err)
		return
	}

	acceptor := chi.URLParam(r, "cardAcceptor")
	card, ok := s.resolveCard(acceptor, in.Token, in.CardNumber, in.ExpiryDateMMYY)
	if !ok && in.PaymentGUID != "" {
		var payment transaction
		if payment, ok = s.lookup(acceptor, messages.TransactionTypePayment, in.PaymentGUID); ok {
			card = payment.card
		}
	}
	if !ok {
		if in.PaymentGUID != "" {
			s.writeError(w, http.StatusNotFound, "Payment not found")
		} else {
			s.writeError(w, http.StatusNotFound, "Token not found")
		}
		return
	}

	terminalDateTime := r.Header.Get(gateway.HeaderDate)
	status, approved := decide(messages.TransactionTypeRefund, in.Amount)
	out := messages.Refund{
		RefundGUID:          uuid.NewString(),
		PaymentGUID:         in.PaymentGUID,
		Amount:              in.Amount,
		Currency:            in.Currency,
		CardTypeName:        cardTypeName(card.number),
		MaskedCardNumber:    maskCardNumber(card.number),
		ExpiryDateMMYY:      card.expiry,
		CustomerReference:   in.CustomerReference,
		ServerDateTime:      timeutil.FormatTerminalDateTime(s.clock()),
		TerminalDateTime:    terminalDateTime,
		AgreementNumber:     agreementNumber,
		CardAcceptorName:    merchantName,
		CardAcceptorAddress: merchantAddress,
	}
	if approved {
		out.ApprovalCode = approvalCode()
		out.IssuerResponseText = "Approved"
		s.record(transaction{
			kind:             messages.TransactionTypeRefund,
			acceptor:         acceptor,
			guid:             out.RefundGUID,
			amount:           in.Amount,
			currency:         in.Currency,
			card:             card,
			terminalDateTime: terminalDateTime,
		})
	} else {
		out.IssuerResponseText = "Declined by issuer"
	}

	s.writeEntity(w, status, out)
}

func (s *Sandbox) handleReversal(w http.ResponseWriter, r *http.Request) {
	var in messages.ReversalRequest
	if !s.decode(w, r, &in) {
		return
	}
	if _, err := payload.Reversal(in); err != nil {
		s.writeValidation(w, err)
		return
	}

	acceptor := chi.URLParam(r, "cardAcceptor")
	candidates := []struct{ kind, guid string }{
		{messages.TransactionTypeAuthorization, in.AuthorizationGUID},
		{messages.TransactionTypePayment, in.PaymentGUID},
		{messages.TransactionTypeRefund, in.RefundGUID},
	}

	var reversed []transaction
	s.mu.Lock()
	for _, c := range candidates {
		if c.guid == "" {
			continue
		}
		t, ok := s.transactions[c.guid]
		if !ok || t.acceptor != acceptor || t.kind != c.kind || t.reversed {
			continue
		}
		t.reversed = true
		reversed = append(reversed, *t)
	}
	s.mu.Unlock()

	if len(reversed) == 0 {
		s.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	first := reversed[0]
	s.writeEntity(w, http.StatusOK, messages.Reversal{
		ReversalGUID:       uuid.NewString(),
		PaymentGUID:        in.PaymentGUID,
		AuthorizationGUID:  in.AuthorizationGUID,
		RefundGUID:         in.RefundGUID,
		Amount:             first.amount,
		Currency:           first.currency,
		CardTypeName:       cardTypeName(first.card.number),
		MaskedCardNumber:   maskCardNumber(first.card.number),
		CustomerReference:  in.CustomerReference,
		ApprovalCode:       approvalCode(),
		IssuerResponseText: "Reversed",
		ServerDateTime:     timeutil.FormatTerminalDateTime(s.clock()),
		TerminalDateTime:   r.Header.Get(gateway.HeaderDate),
	})
}

func (s *Sandbox) handleCancellation(w http.ResponseWriter, r *http.Request) {
	var in messages.CancellationRequest
	if !s.decode(w, r, &in) {
		return
	}
	if _, err := payload.Cancellation(in); err != nil {
		s.writeValidation(w, err)
		return
	}

	acceptor := chi.URLParam(r, "cardAcceptor")

	var found *transaction
	s.mu.Lock()
	for _, t := range s.transactions {
		if t.acceptor == acceptor && t.kind == in.TransactionType && t.terminalDateTime == in.TerminalDateTime && !t.cancelled {
			t.cancelled = true
			found = t
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		s.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	s.writeEntity(w, http.StatusOK, messages.Cancellation{
		TransactionType:    in.TransactionType,
		Currency:           in.Currency,
		Amount:             in.Amount,
		ApprovalCode:       approvalCode(),
		IssuerResponseText: "Cancelled",
		ServerDateTime:     timeutil.FormatTerminalDateTime(s.clock()),
		TerminalDateTime:   r.Header.Get(gateway.HeaderDate),
	})
}

func (s *Sandbox) handleTokenCreate(w http.ResponseWriter, r *http.Request) {
	s.storeToken(w, r, true)
}

func (s *Sandbox) handleTokenUpdate(w http.ResponseWriter, r *http.Request) {
	s.storeToken(w, r, false)
}

func (s *Sandbox) storeToken(w http.ResponseWriter, r *http.Request, create bool) {
	var in messages.TokenRequest
	if !s.decode(w, r, &in) {
		return
	}
	if _, err := payload.Token(in); err != nil {
		s.writeValidation(w, err)
		return
	}

	token := tokenParam(r)
	key := tokenKey(chi.URLParam(r, "cardAcceptor"), token)

	s.mu.Lock()
	_, exists := s.tokens[key]
	switch {
	case create && exists:
		s.mu.Unlock()
		s.writeError(w, http.StatusConflict, "Token already exists")
		return
	case !create && !exists:
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "Token not found")
		return
	}
	card := storedCard{number: in.CardNumber, expiry: in.ExpiryDateMMYY}
	s.tokens[key] = card
	s.mu.Unlock()

	status := http.StatusOK
	if create {
		status = http.StatusCreated
	}
	s.writeEntity(w, status, tokenEntity(token, card))
}

func (s *Sandbox) handleTokenRead(w http.ResponseWriter, r *http.Request) {
	token := tokenParam(r)

	s.mu.Lock()
	card, ok := s.tokens[tokenKey(chi.URLParam(r, "cardAcceptor"), token)]
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "Token not found")
		return
	}
	s.writeEntity(w, http.StatusOK, tokenEntity(token, card))
}

func (s *Sandbox) handleTokenDelete(w http.ResponseWriter, r *http.Request) {
	token := tokenParam(r)
	key := tokenKey(chi.URLParam(r, "cardAcceptor"), token)

	s.mu.Lock()
	card, ok := s.tokens[key]
	delete(s.tokens, key)
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "Token not found")
		return
	}
	s.writeEntity(w, http.StatusOK, tokenEntity(token, card))
}

func tokenEntity(token string, card storedCard) messages.Token {
	return messages.Token{
		Token:            token,
		MaskedCardNumber: maskCardNumber(card.number),
		ExpiryDateMMYY:   card.expiry,
		CardTypeName:     cardTypeName(card.number),
	}
}
