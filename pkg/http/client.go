package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
)

// ClientConfig holds transport settings for the gateway client
type ClientConfig struct {
	// ConnectTimeout bounds TCP connect and TLS handshake
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers and the body read
	ReadTimeout time.Duration

	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	KeepAlive           time.Duration

	InsecureSkipVerify bool
	MinTLSVersion      uint16
}

// GatewayClientConfig returns settings for a single gateway host.
// Zero timeouts fall back to the defaults.
func GatewayClientConfig(connectTimeout, readTimeout time.Duration) *ClientConfig {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	return &ClientConfig{
		ConnectTimeout: connectTimeout,
		ReadTimeout:    readTimeout,

		// The gateway is one host; keep the whole pool for it
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		KeepAlive:           60 * time.Second,

		MinTLSVersion: tls.VersionTLS12,
	}
}

// NewHTTPClient creates an *http.Client for gateway calls.
// The overall deadline is connect plus read timeout; redirects are not followed
// because a signed request is only valid for the path it was signed for.
func NewHTTPClient(cfg *ClientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        cfg.MaxIdleConnsPerHost,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,

		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		ExpectContinueTimeout: 1 * time.Second,

		// XML bodies are small
		DisableCompression: true,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			MinVersion:         cfg.MinTLSVersion,
		},
		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
