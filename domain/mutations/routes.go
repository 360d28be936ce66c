package mutations

import "github.com/labstack/echo/v4"

// RegisterRoutes registers mutation routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/graph/mutations", h.Apply)
}
