package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_login_total",
			Help: "Total number of login attempts",
		},
	)

	SignupCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_signup_total",
			Help: "Total number of account signups",
		},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_request", "invalid_credentials", "email_already_exists", ...
	)

	AlertOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_alert_operations_total",
			Help: "Total number of alert operations",
		},
		[]string{"operation"}, // "create", "list", "acknowledge"
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Client-side pipeline counters
	ClientRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_client_requests_total",
			Help: "Total number of outbound API requests by outcome",
		},
		[]string{"outcome"}, // "ok", "unauthorized", "forbidden", "rate_limited", "server_error", "network_error"
	)

	SessionExpiredCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_session_expired_total",
			Help: "Total number of forced logouts caused by 401 responses",
		},
	)

	PollCycleCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_alert_poll_cycles_total",
			Help: "Total number of alert poll cycles by result",
		},
		[]string{"result"}, // "ok", "error"
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update"
	)
)

// Gauge metrics
var (
	UnacknowledgedAlertsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_unacknowledged_alerts",
			Help: "Number of unacknowledged alerts per tenant",
		},
		[]string{"tenant_id"},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_info",
			Help: "Information about the attribution console service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(SignupCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AlertOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(ClientRequestCounter)
	prometheus.MustRegister(SessionExpiredCounter)
	prometheus.MustRegister(PollCycleCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(UnacknowledgedAlertsGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAlertOperation records an alert operation by type
func RecordAlertOperation(operation string) {
	AlertOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordClientRequest records an outbound client request outcome
func RecordClientRequest(outcome string) {
	ClientRequestCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordPollCycle records an alert poll cycle result
func RecordPollCycle(result string) {
	PollCycleCounter.With(prometheus.Labels{"result": result}).Inc()
}

// UpdateUnacknowledgedAlerts updates the unacknowledged alerts gauge for a tenant
func UpdateUnacknowledgedAlerts(tenantID uint, count int) {
	UnacknowledgedAlertsGauge.With(prometheus.Labels{
		"tenant_id": strconv.FormatUint(uint64(tenantID), 10),
	}).Set(float64(count))
}
