package typedefs

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

// ListResponse wraps the stored definitions.
type ListResponse struct {
	Types []*TypeDefinition `json:"types"`
	Total int               `json:"total"`
}

// Handler serves read access to type definitions.
type Handler struct {
	svc *Service
}

// NewHandler creates a new type definition handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns all type definitions.
// GET /api/graph/types
func (h *Handler) List(c echo.Context) error {
	defs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperror.FromDB(err)
	}
	if defs == nil {
		defs = []*TypeDefinition{}
	}
	return c.JSON(http.StatusOK, ListResponse{Types: defs, Total: len(defs)})
}

// Get returns one type definition.
// GET /api/graph/types/:entity/:label
func (h *Handler) Get(c echo.Context) error {
	entity := mutations.EntityType(c.Param("entity"))
	if !entity.Valid() {
		return apperror.NewBadRequest("entity must be node or edge")
	}
	label := c.Param("label")

	def, err := h.svc.Get(c.Request().Context(), label, entity)
	if err != nil {
		return apperror.FromDB(err)
	}
	if def == nil {
		return apperror.NewNotFound("type", string(entity)+"/"+label)
	}
	return c.JSON(http.StatusOK, def)
}
