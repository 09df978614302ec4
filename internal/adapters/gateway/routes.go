package gateway

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kevin07696/ecommerce-client/pkg/messages"
)

// BaseURLs holds the gateway root for each environment
type BaseURLs struct {
	Live string
	Test string
}

// Router builds endpoint URLs from the configured base URLs
type Router struct {
	baseURLs BaseURLs
}

func NewRouter(baseURLs BaseURLs) *Router {
	return &Router{baseURLs: baseURLs}
}

// BaseURL returns the root for env without a trailing slash.
// An unset URL is a configuration error.
func (r *Router) BaseURL(env messages.Environment) (string, error) {
	var base string
	switch env {
	case messages.EnvironmentLive:
		base = r.baseURLs.Live
	case messages.EnvironmentTest:
		base = r.baseURLs.Test
	default:
		return "", fmt.Errorf("unknown environment %q", env)
	}

	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", fmt.Errorf("base URL for environment %s is not configured", env)
	}
	if _, err := url.Parse(base); err != nil {
		return "", fmt.Errorf("invalid base URL for environment %s: %w", env, err)
	}
	return base, nil
}

// Resolve returns the full URL for op. tokenName is used by the token family only.
func (r *Router) Resolve(env messages.Environment, op Operation, cardAcceptorID, tokenName string) (string, error) {
	base, err := r.BaseURL(env)
	if err != nil {
		return "", err
	}
	if cardAcceptorID == "" {
		return "", fmt.Errorf("card acceptor id is empty")
	}

	switch op.Family {
	case FamilyTransaction:
		return fmt.Sprintf("%s/web/%s/%s/", base, url.PathEscape(cardAcceptorID), op.Resource), nil
	case FamilyToken:
		if tokenName == "" {
			return "", fmt.Errorf("token name is empty")
		}
		return fmt.Sprintf("%s/tokenstore/%s/%s/", base, url.PathEscape(cardAcceptorID), url.PathEscape(tokenName)), nil
	default:
		return "", fmt.Errorf("operation %s has unknown family %q", op.Name, op.Family)
	}
}
