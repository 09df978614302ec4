package payload

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/kevin07696/ecommerce-client/pkg/errors"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
	"github.com/kevin07696/ecommerce-client/pkg/timeutil"
)

// Rule inspects a request and returns its violations, if any
type Rule[T any] func(req *T) []string

// Pipeline runs field rules, then cross-field rules.
//
// Every field rule runs and all violations are reported together. Cross-field
// rules run only when the field rules passed, and the first one to fail is
// reported alone.
type Pipeline[T any] struct {
	Field []Rule[T]
	Cross []Rule[T]
}

// Validate returns nil or a validation GatewayError
func (p Pipeline[T]) Validate(req *T) error {
	var violations []string
	for _, rule := range p.Field {
		violations = append(violations, rule(req)...)
	}
	if len(violations) > 0 {
		return pkgerrors.NewValidationError(violations...)
	}

	for _, rule := range p.Cross {
		if v := rule(req); len(v) > 0 {
			return pkgerrors.NewValidationError(v[0])
		}
	}
	return nil
}

func required[T any](field string, get func(*T) string) Rule[T] {
	return func(req *T) []string {
		if get(req) == "" {
			return []string{field + " is required"}
		}
		return nil
	}
}

// exactLength checks the length of a set value. With requiredToo, an unset
// value fails as well, so a missing field reports both presence and format.
func exactLength[T any](field string, n int, requiredToo bool, message string, get func(*T) string) Rule[T] {
	return func(req *T) []string {
		v := get(req)
		if v == "" && !requiredToo {
			return nil
		}
		if len(v) != n {
			return []string{field + " " + message}
		}
		return nil
	}
}

func decimalAmount[T any](get func(*T) string) Rule[T] {
	return func(req *T) []string {
		v := get(req)
		if v == "" {
			return nil
		}
		if _, err := decimal.NewFromString(v); err != nil {
			return []string{"amount must be a decimal number"}
		}
		return nil
	}
}

func supportedCurrency[T any](get func(*T) string) Rule[T] {
	return func(req *T) []string {
		v := get(req)
		if v == "" {
			return nil
		}
		if _, ok := messages.ParseCurrency(v); !ok {
			return []string{"currency is not supported"}
		}
		return nil
	}
}

func oneOf[T any](field string, allowed []string, get func(*T) string) Rule[T] {
	return func(req *T) []string {
		v := get(req)
		if v == "" {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return []string{field + " must be one of " + strings.Join(allowed, ", ")}
	}
}

func terminalDateTime[T any](get func(*T) string) Rule[T] {
	return func(req *T) []string {
		v := get(req)
		if v == "" || timeutil.IsTerminalDateTime(v) {
			return nil
		}
		return []string{"terminalDateTime must be 17 digits"}
	}
}

// anyOf passes when at least one of the values is set
func anyOf[T any](message string, get func(*T) []string) Rule[T] {
	return func(req *T) []string {
		for _, v := range get(req) {
			if v != "" {
				return nil
			}
		}
		return []string{message}
	}
}
