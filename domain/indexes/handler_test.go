package indexes

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

type staticOpener struct {
	gw age.Gateway
}

func (o staticOpener) Open(context.Context) (age.Gateway, error) { return o.gw, nil }

func serveEnsure(t *testing.T, gw *catalogGateway, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(slog.Default())
	RegisterRoutes(e, NewHandler(NewService(staticOpener{gw: gw}, slog.Default())))

	req := httptest.NewRequest(http.MethodPost, "/api/graph/indexes/ensure", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_EnsureSingleLabel(t *testing.T) {
	gw := newCatalogGateway("kartograph_graph")

	rec := serveEnsure(t, gw, `{"label":"KNOWS","kind":"edge"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EnsureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Created)
}

func TestHandler_EnsureAll(t *testing.T) {
	gw := newCatalogGateway("kartograph_graph")
	gw.labels["Person"] = "v"

	rec := serveEnsure(t, gw, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"created":3}`, rec.Body.String())
}

func TestHandler_EnsureValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"label without kind", `{"label":"Person"}`},
		{"bad kind", `{"label":"Person","kind":"table"}`},
		{"malformed", `{"label":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveEnsure(t, newCatalogGateway("kartograph_graph"), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
