package query

import "github.com/labstack/echo/v4"

// RegisterRoutes registers read query routes. rl may be nil.
func RegisterRoutes(e *echo.Echo, h *Handler, rl *RateLimiter) {
	var mw []echo.MiddlewareFunc
	if rl.enabled() {
		mw = append(mw, rl.Middleware())
	}
	e.POST("/api/graph/query", h.Execute, mw...)
}
