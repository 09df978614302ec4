package gateway

import (
	"crypto"
	"crypto/hmac"
	_ "crypto/sha1"
	"encoding/hex"
	"net/http"

	pkgerrors "github.com/kevin07696/ecommerce-client/pkg/errors"
)

const (
	HeaderDate        = "mws-date"
	HeaderHMAC        = "mws-hmac"
	HeaderContentType = "Content-Type"
	ContentTypeXML    = "application/xml"
)

// Signer computes the mws-hmac header value for a request.
// The key is the card acceptor's shared secret; a Signer holds no per-call state
// and is safe for concurrent use.
type Signer struct {
	key []byte
}

// NewSigner returns a Signer keyed with sharedSecret.
// An empty secret or a missing SHA-1 implementation is a SigningError.
func NewSigner(sharedSecret string) (*Signer, error) {
	if sharedSecret == "" {
		return nil, pkgerrors.NewSigningError("shared secret is not configured", nil)
	}
	if !crypto.SHA1.Available() {
		return nil, pkgerrors.NewSigningError("HmacSHA1 is not available", nil)
	}
	return &Signer{key: []byte(sharedSecret)}, nil
}

// CanonicalString builds method + path + terminalDateTime + body with no separators.
// A nil body contributes nothing.
func CanonicalString(method, path, terminalDateTime string, body []byte) []byte {
	buf := make([]byte, 0, len(method)+len(path)+len(terminalDateTime)+len(body))
	buf = append(buf, method...)
	buf = append(buf, path...)
	buf = append(buf, terminalDateTime...)
	buf = append(buf, body...)
	return buf
}

// Sign returns the lowercase hex HMAC-SHA1 of the canonical string
func (s *Signer) Sign(method, path, terminalDateTime string, body []byte) (string, error) {
	if s == nil || len(s.key) == 0 {
		return "", pkgerrors.NewSigningError("signer has no key", nil)
	}

	mac := hmac.New(crypto.SHA1.New, s.key)
	mac.Write(CanonicalString(method, path, terminalDateTime, body))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks a received mws-hmac value in constant time
func (s *Signer) Verify(method, path, terminalDateTime string, body []byte, signature string) bool {
	expected, err := s.Sign(method, path, terminalDateTime, body)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Headers returns a fresh header set for one call: date, signature and content type.
func (s *Signer) Headers(method, path, terminalDateTime string, body []byte) (http.Header, error) {
	signature, err := s.Sign(method, path, terminalDateTime, body)
	if err != nil {
		return nil, err
	}

	h := make(http.Header, 3)
	h.Set(HeaderDate, terminalDateTime)
	h.Set(HeaderHMAC, signature)
	h.Set(HeaderContentType, ContentTypeXML)
	return h, nil
}
