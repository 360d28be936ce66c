package tracing

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
)

func TestNewTracerProvider_DisabledInstallsNoop(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	p, err := NewTracerProvider(&config.Config{}, slog.Default())
	require.NoError(t, err)
	assert.Nil(t, p.SDK)

	_, isNoop := otel.GetTracerProvider().(noop.TracerProvider)
	assert.True(t, isNoop)
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := &config.Config{Otel: config.OtelConfig{
		Endpoint:    "http://localhost:4318",
		Insecure:    true,
		ServiceName: "kartograph-test",
		SampleRatio: 0.5,
	}}
	cfg.Graph.Name = "test_graph"

	p, err := NewTracerProvider(cfg, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, p.SDK)
	t.Cleanup(func() { _ = p.SDK.Shutdown(t.Context()) })

	assert.Same(t, p.SDK, otel.GetTracerProvider())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestSkipTracing(t *testing.T) {
	e := echo.New()
	for path, want := range map[string]bool{
		"/ready":               true,
		"/metrics":             true,
		"/api/graph/mutations": false,
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		assert.Equal(t, want, skipTracing(c), path)
	}
}
