package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
)

type fakeRow struct {
	n   int
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.n
	return nil
}

type fakeDB struct {
	pingErr error
	row     fakeRow
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }
func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return f.row
}

func TestHandler_Probes(t *testing.T) {
	tests := []struct {
		name        string
		db          *fakeDB
		wantHealth  int
		wantReady   int
		wantMessage string
	}{
		{"healthy", &fakeDB{row: fakeRow{n: 1}}, http.StatusOK, http.StatusOK, `"status":"healthy"`},
		{"database down", &fakeDB{pingErr: errors.New("connection refused")}, http.StatusServiceUnavailable, http.StatusServiceUnavailable, "connection refused"},
		{"graph missing", &fakeDB{row: fakeRow{n: 0}}, http.StatusServiceUnavailable, http.StatusServiceUnavailable, "graph kartograph_graph does not exist"},
		{"catalog error", &fakeDB{row: fakeRow{err: errors.New("relation does not exist")}}, http.StatusServiceUnavailable, http.StatusServiceUnavailable, "relation does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(tt.db, "kartograph_graph")
			e := echo.New()

			rec := httptest.NewRecorder()
			assert.NoError(t, h.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
			assert.Equal(t, tt.wantHealth, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)

			rec = httptest.NewRecorder()
			assert.NoError(t, h.Ready(e.NewContext(httptest.NewRequest(http.MethodGet, "/ready", nil), rec)))
			assert.Equal(t, tt.wantReady, rec.Code)
		})
	}
}

func TestHandler_Healthz(t *testing.T) {
	h := newHandler(&fakeDB{pingErr: errors.New("down")}, "g")
	rec := httptest.NewRecorder()

	assert.NoError(t, h.Healthz(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSystemSampler(t *testing.T) {
	s := systemSampler{
		loadAvg: func(context.Context) (*load.AvgStat, error) { return &load.AvgStat{Load1: 1.5}, nil },
		memory:  func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errors.New("unsupported") },
	}

	stats := s.sample(context.Background())
	assert.InDelta(t, 1.5, stats.Load1, 0.001)
	assert.Zero(t, stats.MemoryUsedPercent)
	assert.Positive(t, stats.Goroutines)
}
