package gateway

import (
	"regexp"
	"strings"
)

var (
	cardNumberPattern = regexp.MustCompile(`<cardNumber>[^<]*</cardNumber>`)
	cvcPattern        = regexp.MustCompile(`<cardVerificationCode>[^<]*</cardVerificationCode>`)
)

// RedactBody masks cardholder data in an XML body before it is logged.
// Card numbers keep at most their last four digits whatever separators they
// contain; verification codes are removed entirely.
func RedactBody(body []byte) string {
	out := cardNumberPattern.ReplaceAllFunc(body, func(m []byte) []byte {
		content := strings.TrimSuffix(strings.TrimPrefix(string(m), "<cardNumber>"), "</cardNumber>")
		return []byte("<cardNumber>****" + lastFourDigits(content) + "</cardNumber>")
	})
	out = cvcPattern.ReplaceAll(out, []byte("<cardVerificationCode>***</cardVerificationCode>"))
	return string(out)
}

// lastFourDigits returns the last four digits of s, or "" when it has fewer
func lastFourDigits(s string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
