package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/scheduler"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

// MetricsHandler serves Prometheus metrics and JSON summaries.
type MetricsHandler struct {
	db    bun.IDB
	sched *scheduler.Scheduler
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(db bun.IDB, sched *scheduler.Scheduler) *MetricsHandler {
	return &MetricsHandler{db: db, sched: sched}
}

// Prometheus exposes the default registry.
// GET /metrics
func (h *MetricsHandler) Prometheus() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TypeCount is the number of definitions per entity type.
type TypeCount struct {
	EntityType string `bun:"entity_type" json:"entity_type"`
	Count      int64  `bun:"count" json:"count"`
}

// TypeMetrics counts stored type definitions.
// GET /api/metrics/types
func (h *MetricsHandler) TypeMetrics(c echo.Context) error {
	counts, err := h.typeCounts(c.Request().Context())
	if err != nil {
		return apperror.FromDB(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"types":     counts,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *MetricsHandler) typeCounts(ctx context.Context) ([]TypeCount, error) {
	counts := []TypeCount{}
	err := h.db.NewSelect().
		TableExpr("kartograph.type_definitions").
		ColumnExpr("entity_type").
		ColumnExpr("count(*) AS count").
		GroupExpr("entity_type").
		OrderExpr("entity_type").
		Scan(ctx, &counts)
	return counts, err
}

// SchedulerMetrics lists scheduled tasks and their next run.
// GET /api/metrics/scheduler
func (h *MetricsHandler) SchedulerMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"running": h.sched.IsRunning(),
		"tasks":   h.sched.GetTaskInfo(),
	})
}
