package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Login authenticates against the platform and installs the session. Expected
// failures (bad credentials, malformed response) come back as *AuthError with
// a displayable message; the session is only written on success.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	payload := map[string]string{"email": email, "password": password}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/v1/users/login", payload, &raw); err != nil {
		return nil, &AuthError{Message: failureMessage(err, "Login failed"), Err: err}
	}

	user, token := parseLoginResponse(raw)
	if user == nil || user.ID == 0 {
		return nil, &AuthError{Message: "Invalid response from server"}
	}

	if err := c.sessions.Set(user, token); err != nil {
		c.log.Warn("session persisted partially", zap.Error(err))
	}

	c.log.Info("logged in",
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", user.TenantID))
	return user, nil
}

// Signup creates an account and immediately logs in with the same
// credentials. A 409 maps to the dedicated already-exists message.
func (c *Client) Signup(ctx context.Context, firstName, lastName, email, password string) (*User, error) {
	payload := map[string]interface{}{
		"email":      email,
		"first_name": firstName,
		"last_name":  lastName,
		"password":   password,
		"user_type":  "product_user",
	}

	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/users", payload, &resp); err != nil {
		if IsConflict(err) {
			return nil, &AuthError{
				Message: "An account with this email already exists. Please sign in instead.",
				Err:     err,
			}
		}
		return nil, &AuthError{Message: failureMessage(err, "Signup failed. Please try again."), Err: err}
	}
	if resp.User == nil || resp.User.ID == 0 {
		return nil, &AuthError{Message: "Failed to create user account"}
	}

	return c.Login(ctx, email, password)
}

// Logout clears the current and persisted session. This is a local-only
// operation; the token is not invalidated server-side.
func (c *Client) Logout() {
	c.sessions.Clear()
	c.log.Info("logged out")
}

// parseLoginResponse accepts both `{user: {...}, token: "..."}` envelopes and
// flat user objects, the two shapes the platform has shipped.
func parseLoginResponse(raw json.RawMessage) (*User, string) {
	var envelope struct {
		User  *User  `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.User != nil && envelope.User.ID != 0 {
		return envelope.User, envelope.Token
	}

	var flat User
	if err := json.Unmarshal(raw, &flat); err == nil && flat.ID != 0 {
		return &flat, ""
	}
	return nil, ""
}

// failureMessage picks the most specific displayable message: the backend's
// error field, then the transport error text, then the generic fallback.
func failureMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return fallback
}
