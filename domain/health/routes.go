package health

import "github.com/labstack/echo/v4"

// RegisterRoutes registers probe and metrics routes.
func RegisterRoutes(e *echo.Echo, h *Handler, m *MetricsHandler) {
	e.GET("/health", h.Health)
	e.GET("/healthz", h.Healthz)
	e.GET("/ready", h.Ready)
	e.GET("/metrics", m.Prometheus())

	e.GET("/api/metrics/types", m.TypeMetrics)
	e.GET("/api/metrics/scheduler", m.SchedulerMetrics)
}
