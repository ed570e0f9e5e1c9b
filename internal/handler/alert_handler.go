package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"attribution-console/internal/middleware"
	"attribution-console/internal/model"
	"attribution-console/pkg/database"
	"attribution-console/pkg/jwtutil"
	"attribution-console/pkg/logger"
	"attribution-console/prometheus"
)

// CreateAlert raises a new alert for the tenant. Used by internal monitors
// and for seeding during testing, matching the platform's admin surface.
func CreateAlert(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAlertOperation("create")
	tenantID := middleware.TenantID(c)

	var req struct {
		AlertType   string     `json:"alert_type"`
		Severity    string     `json:"severity"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		TriggeredAt *time.Time `json:"triggered_at"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse alert request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.AlertType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "alert_type is required"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	severity, err := model.ParseSeverity(req.Severity)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	triggeredAt := time.Now()
	if req.TriggeredAt != nil {
		triggeredAt = *req.TriggeredAt
	}

	alert := model.Alert{
		TenantID:    tenantID,
		AlertType:   req.AlertType,
		Severity:    severity,
		Title:       req.Title,
		Description: req.Description,
		TriggeredAt: triggeredAt,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&alert); result.Error != nil {
		log.Error("Failed to create alert", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create alert"})
	}

	refreshUnacknowledgedGauge(tenantID)

	log.Info("Alert created",
		zap.Uint("alert_id", alert.ID),
		zap.Uint("tenant_id", tenantID),
		zap.String("severity", string(severity)))
	return c.JSON(http.StatusCreated, alert)
}

// ListAlerts retrieves alerts for the tenant, newest first
func ListAlerts(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAlertOperation("list")
	tenantID := middleware.TenantID(c)

	query := database.GetDB().Where("tenant_id = ?", tenantID)

	if severityParam := c.QueryParam("severity"); severityParam != "" {
		severity, err := model.ParseSeverity(severityParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		query = query.Where("severity = ?", severity)
	}
	if c.QueryParam("acknowledged") == "true" {
		query = query.Where("acknowledged = ?", true)
	} else if c.QueryParam("acknowledged") == "false" {
		query = query.Where("acknowledged = ?", false)
	}

	limit := 50
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var alerts []model.Alert
	if result := query.Order("triggered_at DESC").Limit(limit).Find(&alerts); result.Error != nil {
		log.Error("Failed to list alerts", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list alerts"})
	}

	return c.JSON(http.StatusOK, echo.Map{"alerts": alerts})
}

// AcknowledgeAlert marks an alert as acknowledged by the calling user
func AcknowledgeAlert(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAlertOperation("acknowledge")
	tenantID := middleware.TenantID(c)

	alertID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid alert ID"})
	}

	acknowledgedBy := "system"
	if claims, ok := c.Get("user").(*jwtutil.UserClaims); ok {
		acknowledgedBy = claims.Email
	}

	now := time.Now()
	defer prometheus.TrackDBOperation("update")(time.Now())
	result := database.GetDB().Model(&model.Alert{}).
		Where("tenant_id = ? AND id = ?", tenantID, uint(alertID)).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_by": acknowledgedBy,
			"acknowledged_at": now,
		})
	if result.Error != nil {
		log.Error("Failed to acknowledge alert", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to acknowledge alert"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "alert not found"})
	}

	refreshUnacknowledgedGauge(tenantID)

	log.Info("Alert acknowledged",
		zap.Uint64("alert_id", alertID),
		zap.Uint("tenant_id", tenantID),
		zap.String("by", acknowledgedBy))
	return c.JSON(http.StatusOK, echo.Map{"message": "Alert acknowledged"})
}

func refreshUnacknowledgedGauge(tenantID uint) {
	var count int64
	if err := database.GetDB().Model(&model.Alert{}).
		Where("tenant_id = ? AND acknowledged = ?", tenantID, false).
		Count(&count).Error; err == nil {
		prometheus.UpdateUnacknowledgedAlerts(tenantID, int(count))
	}
}
