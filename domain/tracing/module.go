// Package tracing installs the process TracerProvider and instruments the
// HTTP surface. Domain code opens spans through pkg/tracing.
package tracing

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/version"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

var Module = fx.Module("tracing",
	fx.Provide(NewTracerProvider),
	fx.Invoke(registerShutdown),
	fx.Invoke(RegisterEchoMiddleware),
)

// Provider is the installed SDK provider; nil when export is disabled.
type Provider struct {
	SDK *sdktrace.TracerProvider
}

// NewTracerProvider registers the global provider. Without an endpoint the
// no-op provider is installed and pkg/tracing spans cost nothing.
func NewTracerProvider(cfg *config.Config, log *slog.Logger) (*Provider, error) {
	log = log.With(logger.Scope("tracing"))
	oc := cfg.Otel

	if !oc.Enabled() {
		log.Debug("span export disabled")
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &Provider{}, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(oc.Endpoint),
		otlptracehttp.WithTimeout(oc.Timeout),
	}
	if oc.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(graphResource(cfg, log)),
		sdktrace.WithSampler(Sampler(oc.SampleRatio)),
	)
	otel.SetTracerProvider(tp)

	log.Info("exporting spans",
		slog.String("endpoint", oc.Endpoint),
		slog.String("service", oc.ServiceName),
		slog.Float64("sample_ratio", oc.SampleRatio),
	)
	return &Provider{SDK: tp}, nil
}

func graphResource(cfg *config.Config, log *slog.Logger) *resource.Resource {
	res, err := resource.New(context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(cfg.Otel.ServiceName),
			semconv.ServiceVersion(version.Get().Version),
			semconv.DeploymentEnvironment(cfg.Environment),
			attribute.String("kartograph.graph", cfg.Graph.Name),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
	)
	if err != nil {
		// Partial detection still returns a usable resource.
		log.Warn("resource detection incomplete", logger.Error(err))
	}
	if res == nil {
		res = resource.Empty()
	}
	return res
}

// Sampler keeps ratio of root traces; children follow their parent.
func Sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1.0 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func registerShutdown(lc fx.Lifecycle, p *Provider) {
	if p.SDK == nil {
		return
	}
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		if err := p.SDK.ForceFlush(ctx); err != nil {
			return err
		}
		return p.SDK.Shutdown(ctx)
	}))
}

// RegisterEchoMiddleware traces every API request. Probes and scrapes are
// not traced.
func RegisterEchoMiddleware(e *echo.Echo, cfg *config.Config) {
	if !cfg.Otel.Enabled() {
		return
	}
	e.Use(otelecho.Middleware(cfg.Otel.ServiceName, otelecho.WithSkipper(skipTracing)))
}

func skipTracing(c echo.Context) bool {
	switch c.Request().URL.Path {
	case "/health", "/healthz", "/ready", "/metrics":
		return true
	}
	return false
}
