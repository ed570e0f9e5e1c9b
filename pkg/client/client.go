package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"attribution-console/prometheus"
)

const (
	headerTenantID = "X-Tenant-ID"
	headerAuth     = "Authorization"
)

// Config holds client construction parameters
type Config struct {
	// BaseURL of the platform API, without the /v1 prefix
	BaseURL string
	// Timeout for each request; defaults to 30s
	Timeout time.Duration
	// CredentialsFile is the fixed path the session persists under
	CredentialsFile string
	// Logger for pipeline events; a nop logger is used when nil
	Logger *zap.Logger
	// OnSessionExpired runs once per 401 response, after the session has
	// been torn down. The console uses it to drop back to the login prompt.
	OnSessionExpired func()
}

// Client is the authenticated request pipeline for the platform API. Every
// outbound call is decorated with the session's tenant and bearer headers and
// every response flows through one central error policy.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	sessions         *SessionManager
	log              *zap.Logger
	onSessionExpired func()
}

// New creates a client and restores any persisted session
func New(cfg *Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	sessions := NewSessionManager(NewCredentialStore(cfg.CredentialsFile), log)
	sessions.Restore()

	return &Client{
		BaseURL:          cfg.BaseURL,
		HTTPClient:       &http.Client{Timeout: timeout},
		sessions:         sessions,
		log:              log,
		onSessionExpired: cfg.OnSessionExpired,
	}
}

// Sessions exposes the session manager
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// decorate attaches tenant and bearer headers from the current session.
// It only reads session state and applying it twice sets the same headers.
func (c *Client) decorate(req *http.Request) {
	session := c.sessions.Current()
	if session.User != nil && session.User.TenantID != 0 {
		req.Header.Set(headerTenantID, fmt.Sprintf("%d", session.User.TenantID))
	}
	if session.Token != "" {
		req.Header.Set(headerAuth, "Bearer "+session.Token)
	}
}

// do performs a JSON request against the API and decodes the response into
// out when non-nil. Failures always pass through handleResponseError before
// being returned.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return c.handleResponseError(&NetworkError{Err: err})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.handleResponseError(&NetworkError{Err: err})
	}

	if resp.StatusCode >= 400 {
		return c.handleResponseError(&APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		})
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// handleResponseError is the central interceptor. It performs the pipeline's
// side effect for the failure class and then always returns the error so the
// caller can still react locally. No branch retries.
func (c *Client) handleResponseError(err error) error {
	switch {
	case IsUnauthorized(err):
		// Unconditional teardown. An expired token and a request that was
		// never authenticated are treated identically.
		prometheus.RecordClientRequest("unauthorized")
		prometheus.SessionExpiredCounter.Inc()
		c.log.Warn("unauthorized response, clearing session")
		c.sessions.Clear()
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
	case IsForbidden(err):
		prometheus.RecordClientRequest("forbidden")
		c.log.Error("access forbidden", zap.Error(err))
	case IsRateLimited(err):
		prometheus.RecordClientRequest("rate_limited")
		c.log.Error("rate limit exceeded", zap.Error(err))
	case IsNetworkError(err):
		prometheus.RecordClientRequest("network_error")
		c.log.Error("network error", zap.Error(err))
	case statusOf(err) >= 500:
		prometheus.RecordClientRequest("server_error")
		c.log.Error("server error", zap.Error(err))
	default:
		prometheus.RecordClientRequest("error")
		c.log.Error("API error", zap.Error(err))
	}
	return err
}

// errorMessage extracts the backend's error field from a response body
func errorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(body)
}
