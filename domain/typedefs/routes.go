package typedefs

import "github.com/labstack/echo/v4"

// RegisterRoutes registers type definition routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/graph/types")
	g.GET("", h.List)
	g.GET("/:entity/:label", h.Get)
}
