package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/version"
)

const graphExistsSQL = `SELECT count(*) FROM ag_catalog.ag_graph WHERE name = $1`

// database is the subset of *pgxpool.Pool the probes use.
type database interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Handler serves liveness and readiness probes.
type Handler struct {
	db      database
	graph   string
	system  systemSampler
	startAt time.Time
}

// NewHandler creates a new health handler.
func NewHandler(pool *pgxpool.Pool, cfg *config.Config) *Handler {
	return newHandler(pool, cfg.Graph.Name)
}

func newHandler(db database, graph string) *Handler {
	return &Handler{db: db, graph: graph, system: newSystemSampler(), startAt: time.Now()}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   version.Info     `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemStats     `json:"system,omitempty"`
}

// Check is one probe result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (c Check) healthy() bool { return c.Status == "healthy" }

// Health reports database connectivity and graph presence.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := h.run(ctx)
	status, code := "healthy", http.StatusOK
	for _, chk := range checks {
		if !chk.healthy() {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}

	return c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).String(),
		Version:   version.Get(),
		Checks:    checks,
		System:    h.system.sample(ctx),
	})
}

// Healthz is the liveness probe.
// GET /healthz
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Ready is the readiness probe: the database answers and the graph exists.
// GET /ready
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	for name, chk := range h.run(ctx) {
		if !chk.healthy() {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":  "not_ready",
				"check":   name,
				"message": chk.Message,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ready"})
}

func (h *Handler) run(ctx context.Context) map[string]Check {
	checks := map[string]Check{"database": {Status: "healthy"}}
	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = Check{Status: "unhealthy", Message: err.Error()}
		checks["graph"] = Check{Status: "unhealthy", Message: "database unavailable"}
		return checks
	}

	var n int
	switch err := h.db.QueryRow(ctx, graphExistsSQL, h.graph).Scan(&n); {
	case err != nil:
		checks["graph"] = Check{Status: "unhealthy", Message: err.Error()}
	case n == 0:
		checks["graph"] = Check{Status: "unhealthy", Message: "graph " + h.graph + " does not exist"}
	default:
		checks["graph"] = Check{Status: "healthy"}
	}
	return checks
}
