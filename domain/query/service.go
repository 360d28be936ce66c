package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/tracing"
)

// Service runs read queries on a dedicated client per call.
type Service struct {
	opener age.Opener
	limits Limits
	log    *slog.Logger
}

// NewService creates a new read query service.
func NewService(opener age.Opener, limits Limits, log *slog.Logger) *Service {
	return &Service{
		opener: opener,
		limits: limits,
		log:    log.With(logger.Scope("query")),
	}
}

// Execute runs text with opts. Errors are always *Error.
func (s *Service) Execute(ctx context.Context, text string, opts Options) ([]map[string]any, error) {
	ctx, span := tracing.Start(ctx, "graph.query.execute",
		attribute.Int("kartograph.query.max_rows", opts.MaxRows),
		attribute.Int("kartograph.query.timeout_seconds", opts.TimeoutSeconds),
	)
	defer span.End()

	start := time.Now()
	rows, err := s.execute(ctx, text, opts)
	queryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var qe *Error
		if !errors.As(err, &qe) {
			qe = classify(text, opts.TimeoutSeconds, err)
		}
		queriesTotal.WithLabelValues(string(qe.Type)).Inc()
		tracing.RecordError(span, err)
		span.SetAttributes(attribute.String("kartograph.query.error_type", string(qe.Type)))

		level := slog.LevelWarn
		if qe.Type == ErrorUnknown {
			level = slog.LevelError
		}
		s.log.Log(ctx, level, "read query failed",
			slog.String("error_type", string(qe.Type)),
			slog.String("query", text),
			logger.Error(err),
		)
		return nil, err
	}

	queriesTotal.WithLabelValues("success").Inc()
	rowsReturned.Observe(float64(len(rows)))
	span.SetAttributes(attribute.Int("kartograph.query.rows", len(rows)))
	return rows, nil
}

func (s *Service) execute(ctx context.Context, text string, opts Options) ([]map[string]any, error) {
	// Refuse before a connection is taken from the pool.
	if kw := Screen(text); kw != "" {
		return nil, forbidden(text, kw)
	}

	gw, err := s.opener.Open(ctx)
	if err != nil {
		return nil, &Error{Type: ErrorUnknown, Message: "connect to graph: " + err.Error(), Query: text, Err: err}
	}
	defer func() {
		if err := gw.Disconnect(ctx); err != nil {
			s.log.Warn("disconnect after query", logger.Error(err))
		}
	}()

	return NewGateway(gw, s.limits, s.log).Execute(ctx, text, opts)
}
