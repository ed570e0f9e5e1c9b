package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Severity grades a notification. The set is closed; decoding rejects
// anything outside it instead of falling through to a default.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates a wire value against the closed set
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity: %q", s)
}

// UnmarshalJSON enforces the closed set at the decode boundary
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Notification is a single alert record as shown to the user
type Notification struct {
	ID           uint      `json:"id"`
	Severity     Severity  `json:"severity"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TriggeredAt  time.Time `json:"triggered_at"`
	Acknowledged bool      `json:"acknowledged"`
}

// FetchAlerts retrieves the tenant's alerts from the platform
func (c *Client) FetchAlerts(ctx context.Context) ([]Notification, error) {
	var resp struct {
		Alerts []Notification `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/realtime/alerts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// AcknowledgeAlert acknowledges an alert server-side
func (c *Client) AcknowledgeAlert(ctx context.Context, id uint) error {
	path := fmt.Sprintf("/v1/realtime/alerts/%d/acknowledge", id)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}
