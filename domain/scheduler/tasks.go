package scheduler

import (
	"context"
	"log/slog"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// IndexSweepTaskName is the scheduler name of the index sweep.
const IndexSweepTaskName = "index_sweep"

// indexSweeper creates missing indexes for every label of the graph.
type indexSweeper interface {
	EnsureAll(ctx context.Context) (int, error)
}

// IndexSweepTask retries index creation that failed or was skipped when a
// label first appeared, including labels created implicitly by MERGE.
type IndexSweepTask struct {
	sweeper indexSweeper
	log     *slog.Logger
}

// NewIndexSweepTask creates a new index sweep task.
func NewIndexSweepTask(sweeper indexSweeper, log *slog.Logger) *IndexSweepTask {
	return &IndexSweepTask{
		sweeper: sweeper,
		log:     log.With(logger.Scope("scheduler.index_sweep")),
	}
}

// Run executes one sweep.
func (t *IndexSweepTask) Run(ctx context.Context) error {
	created, err := t.sweeper.EnsureAll(ctx)
	if err != nil {
		return err
	}
	if created > 0 {
		t.log.Info("created missing indexes", slog.Int("created", created))
	} else {
		t.log.Debug("all labels indexed")
	}
	return nil
}
