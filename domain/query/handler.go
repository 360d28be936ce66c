package query

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

// Request is the body of POST /api/graph/query.
type Request struct {
	Query          string `json:"query" validate:"required"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"min=0"`
	MaxRows        int    `json:"max_rows" validate:"min=0"`
}

// Response carries the normalized rows.
type Response struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Handler handles HTTP requests for read queries.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler creates a new query handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Execute runs a read-only cypher query.
// POST /api/graph/query
func (h *Handler) Execute(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return apperror.NewBadRequest(err.Error())
	}

	rows, err := h.svc.Execute(c.Request().Context(), req.Query, Options{
		TimeoutSeconds: req.TimeoutSeconds,
		MaxRows:        req.MaxRows,
	})
	if err != nil {
		var qe *Error
		if errors.As(err, &qe) {
			return c.JSON(statusFor(qe.Type), qe)
		}
		return apperror.ErrInternal.WithInternal(err)
	}

	return c.JSON(http.StatusOK, Response{Rows: rows, RowCount: len(rows)})
}

func statusFor(t ErrorType) int {
	switch t {
	case ErrorForbidden:
		return http.StatusForbidden
	case ErrorTimeout:
		return http.StatusRequestTimeout
	case ErrorExecution:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
