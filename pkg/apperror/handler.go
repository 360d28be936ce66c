package apperror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// HTTPErrorHandler renders *Error values as is and converts echo's own
// errors (unknown route, bad method, body too large) to the same envelope.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := toAppError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("request failed",
				slog.String("path", c.Path()),
				slog.String("code", appErr.Code),
				logger.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(appErr.HTTPStatus)
			return
		}
		_ = c.JSON(appErr.HTTPStatus, map[string]any{"error": appErr.body()})
	}
}

func toAppError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return New(he.Code, codeForStatus(he.Code), msg)
	}
	return ErrInternal
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "body_too_large"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "request_error"
}
