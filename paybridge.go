// Package paybridge is the Go client SDK for the PayBridge payments and
// identity API. It builds connect authorization URLs, exchanges
// authorization codes for establishment tokens, creates and retrieves
// payments, and verifies signed webhooks.
//
// All outbound calls are routed through a Transport that enforces
// consistent resilience behavior (circuit breaking, optional retries,
// request correlation). The SDK itself holds no mutable state beyond the
// immutable credentials captured at construction; a *Client is safe for
// concurrent use.
package paybridge

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// API base URLs per mode. Overridable via Config for testing.
const (
	productionBaseURL = "https://api.paybridge.io"
	sandboxBaseURL    = "https://api.sandbox.paybridge.io"

	// connectBaseURL is the hosted authorization page establishments are
	// redirected to during the connect flow.
	connectBaseURL = "https://connect.paybridge.io/authorize"
)

// API endpoint paths.
const (
	pathOAuthToken    = "/v1/oauth/token"
	pathEstablishment = "/v1/establishment"
	pathPayment       = "/v1/payment"
)

// defaultUserAgent identifies this SDK on outbound requests.
const defaultUserAgent = "PayBridge-Go/1.0"

// Client is the PayBridge API client facade. Credentials and mode are
// fixed at construction and never mutated afterwards.
type Client struct {
	transport    *Transport
	clientID     string
	clientSecret SecretString
	baseURL      string
	connectURL   string
	logger       *slog.Logger
}

// newClient validates cfg and builds a Client with everything except the
// transport attached.
func newClient(cfg Config) (*Client, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Mode == ModeProduction {
			baseURL = productionBaseURL
		} else {
			baseURL = sandboxBaseURL
		}
	}

	connectURL := cfg.ConnectURL
	if connectURL == "" {
		connectURL = connectBaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		connectURL:   connectURL,
		logger:       logger,
	}, nil
}

// New creates a Client from the given configuration. The base URL is
// selected by cfg.Mode unless an explicit override is set.
func New(cfg Config) (*Client, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	retry := DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	c.transport = NewTransport(httpClient, "paybridge", retry, userAgent)
	return c, nil
}

// NewWithTransport creates a Client with a caller-provided Transport.
// This is useful for testing or for sharing a circuit breaker across
// clients.
func NewWithTransport(transport *Transport, cfg Config) (*Client, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	c.transport = transport
	return c, nil
}
