package indexes

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/tracing"
)

// Service runs the manager on a fresh client per call.
type Service struct {
	opener age.Opener
	log    *slog.Logger
}

var _ Ensurer = (*Service)(nil)

// NewService creates a new index service.
func NewService(opener age.Opener, log *slog.Logger) *Service {
	return &Service{opener: opener, log: log}
}

// EnsureLabelIndexes implements Ensurer.
func (s *Service) EnsureLabelIndexes(ctx context.Context, label string, kind Kind) (int, error) {
	ctx, span := tracing.Start(ctx, "graph.indexes.ensure_label",
		attribute.String("kartograph.label", label),
		attribute.String("kartograph.label.kind", string(kind)),
	)
	defer span.End()

	var created int
	err := s.withManager(ctx, func(m *Manager) error {
		var err error
		created, err = m.EnsureLabelIndexes(ctx, label, kind)
		return err
	})
	tracing.RecordError(span, err)
	span.SetAttributes(attribute.Int("kartograph.indexes.created", created))
	return created, err
}

// EnsureAll indexes every label of the graph.
func (s *Service) EnsureAll(ctx context.Context) (int, error) {
	ctx, span := tracing.Start(ctx, "graph.indexes.ensure_all")
	defer span.End()

	var created int
	err := s.withManager(ctx, func(m *Manager) error {
		var err error
		created, err = m.EnsureAllLabelsIndexed(ctx)
		return err
	})
	tracing.RecordError(span, err)
	span.SetAttributes(attribute.Int("kartograph.indexes.created", created))
	return created, err
}

func (s *Service) withManager(ctx context.Context, fn func(*Manager) error) error {
	gw, err := s.opener.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := gw.Disconnect(ctx); err != nil {
			s.log.Warn("disconnect after index run", logger.Error(err))
		}
	}()
	return fn(NewManager(gw, s.log))
}
