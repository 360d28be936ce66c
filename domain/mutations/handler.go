package mutations

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

// Handler handles HTTP requests for mutation batches.
type Handler struct {
	svc *Service
}

// NewHandler creates a new mutation handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Apply reads a JSONL batch from the body and applies it.
// POST /api/graph/mutations
func (h *Handler) Apply(c echo.Context) error {
	ops, err := ParseBatch(c.Request().Body)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			result := failed(FailureValidation, 0, pe.Error())
			return c.JSON(statusFor(result), result)
		}
		return apperror.ErrBadRequest.WithMessage("could not read request body").WithInternal(err)
	}

	result := h.svc.Apply(c.Request().Context(), ops)
	return c.JSON(statusFor(result), result)
}

func statusFor(r *MutationResult) int {
	switch {
	case r.Success:
		return http.StatusOK
	case r.Failure == FailureValidation, r.Failure == FailureSchema:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
