package mutations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/indexes"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/tracing"
)

// Service applies batches on a dedicated client per call.
type Service struct {
	opener  age.Opener
	schema  SchemaService
	indexer indexes.Ensurer
	log     *slog.Logger
}

// NewService creates a new mutation service. indexer may be nil.
func NewService(opener age.Opener, schema SchemaService, indexer indexes.Ensurer, log *slog.Logger) *Service {
	return &Service{
		opener:  opener,
		schema:  schema,
		indexer: indexer,
		log:     log.With(logger.Scope("mutations")),
	}
}

// Apply runs one batch. It never returns a nil result.
func (s *Service) Apply(ctx context.Context, ops []Operation) *MutationResult {
	batchID := uuid.NewString()
	log := s.log.With(slog.String("batch_id", batchID))

	ctx, span := tracing.Start(ctx, "graph.mutations.apply",
		attribute.String("kartograph.batch.id", batchID),
		attribute.Int("kartograph.batch.operations", len(ops)),
	)
	defer span.End()

	start := time.Now()
	result := s.apply(ctx, log, ops)

	batchDuration.Observe(time.Since(start).Seconds())
	batchesTotal.WithLabelValues(outcome(result)).Inc()
	if result.Success {
		operationsAppliedTotal.Add(float64(result.OperationsApplied))
	} else {
		tracing.RecordError(span, fmt.Errorf("batch %s failed: %v", result.Failure, result.Errors))
	}
	span.SetAttributes(attribute.Bool("kartograph.batch.success", result.Success))

	log.Info("mutation batch finished",
		slog.Bool("success", result.Success),
		slog.Int("operations", len(ops)),
		slog.Int("applied", result.OperationsApplied),
		slog.Duration("duration", time.Since(start)),
	)
	return result
}

func (s *Service) apply(ctx context.Context, log *slog.Logger, ops []Operation) *MutationResult {
	gw, err := s.opener.Open(ctx)
	if err != nil {
		log.Error("open graph connection", logger.Error(err))
		return failed(FailureExecution, 0, fmt.Sprintf("connect to graph: %v", err))
	}

	result := NewApplier(gw, s.schema, log).ApplyBatch(ctx, ops)

	if err := gw.Disconnect(ctx); err != nil {
		log.Warn("disconnect after batch", logger.Error(err))
	}

	if result.Success {
		s.indexDefinedLabels(ctx, log, ops)
	}
	return result
}

// indexDefinedLabels creates indexes for labels introduced by DEFINE. Failures
// are logged; the periodic sweep retries them.
func (s *Service) indexDefinedLabels(ctx context.Context, log *slog.Logger, ops []Operation) {
	if s.indexer == nil {
		return
	}
	for _, op := range ops {
		d, ok := op.(*DefineOperation)
		if !ok {
			continue
		}
		kind := indexes.KindVertex
		if d.EntityType == EntityEdge {
			kind = indexes.KindEdge
		}
		if _, err := s.indexer.EnsureLabelIndexes(ctx, d.Label, kind); err != nil {
			log.Warn("index defined label",
				slog.String("label", d.Label),
				logger.Error(err),
			)
		}
	}
}
