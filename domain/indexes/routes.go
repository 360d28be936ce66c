package indexes

import "github.com/labstack/echo/v4"

// RegisterRoutes registers index maintenance routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/graph/indexes/ensure", h.Ensure)
}
