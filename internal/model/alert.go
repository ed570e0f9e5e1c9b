package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Severity grades an alert. The set is closed; wire values outside it are
// rejected during validation rather than rendered with a fallback style.
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

// Alert represents a realtime alert raised for a tenant
type Alert struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	TenantID       uint           `json:"tenant_id" gorm:"index;not null"`
	AlertType      string         `json:"alert_type" gorm:"type:varchar(64)"`
	Severity       Severity       `json:"severity" gorm:"type:varchar(16);index"`
	Title          string         `json:"title" gorm:"type:varchar(255)"`
	Description    string         `json:"description" gorm:"type:text"`
	TriggeredAt    time.Time      `json:"triggered_at"`
	Acknowledged   bool           `json:"acknowledged" gorm:"default:false;index"`
	AcknowledgedBy string         `json:"acknowledged_by,omitempty" gorm:"type:varchar(100)"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
