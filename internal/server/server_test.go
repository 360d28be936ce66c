package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

func TestNewEcho_ErrorEnvelope(t *testing.T) {
	e := NewEcho(&config.Config{}, slog.Default())
	e.GET("/boom", func(c echo.Context) error {
		return apperror.NewNotFound("type", "person")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestNewEcho_RecoversPanics(t *testing.T) {
	e := NewEcho(&config.Config{}, slog.Default())
	e.GET("/panic", func(c echo.Context) error {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIsProbe(t *testing.T) {
	e := echo.New()
	for path, want := range map[string]bool{
		"/health":              true,
		"/metrics":             true,
		"/api/graph/query":     false,
		"/api/graph/mutations": false,
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, strings.NewReader("")), httptest.NewRecorder())
		assert.Equal(t, want, isProbe(c), path)
	}
}

func TestBodyLimits(t *testing.T) {
	e := NewEcho(&config.Config{}, slog.Default())
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.POST(batchPath, ok)
	e.POST("/api/graph/query", ok)

	big := strings.Repeat("x", 2<<20)
	tests := []struct {
		path string
		want int
	}{
		{batchPath, http.StatusNoContent},
		{"/api/graph/query", http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(big)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
