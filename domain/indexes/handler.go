package indexes

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

// EnsureRequest optionally narrows the run to one label.
type EnsureRequest struct {
	Label string `json:"label" validate:"omitempty,max=63"`
	Kind  Kind   `json:"kind" validate:"required_with=Label,omitempty,oneof=vertex edge"`
}

// EnsureResponse reports how many indexes were created.
type EnsureResponse struct {
	Created int `json:"created"`
}

// Handler handles HTTP requests for index maintenance.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler creates a new index handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Ensure creates missing indexes for one label or the whole graph.
// POST /api/graph/indexes/ensure
func (h *Handler) Ensure(c echo.Context) error {
	var req EnsureRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return apperror.ErrBadRequest.WithMessage("invalid request body")
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return apperror.NewBadRequest(err.Error())
	}

	ctx := c.Request().Context()
	var (
		created int
		err     error
	)
	if req.Label != "" {
		created, err = h.svc.EnsureLabelIndexes(ctx, req.Label, req.Kind)
	} else {
		created, err = h.svc.EnsureAll(ctx)
	}
	if err != nil {
		return apperror.FromDB(err).WithMessage("index creation failed")
	}

	return c.JSON(http.StatusOK, EnsureResponse{Created: created})
}
