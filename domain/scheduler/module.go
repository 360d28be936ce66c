package scheduler

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/indexes"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// Module provides background maintenance tasks.
var Module = fx.Module("scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(
		RegisterTasks,
		RegisterSchedulerLifecycle,
	),
)

// TaskParams contains dependencies for creating scheduled tasks.
type TaskParams struct {
	fx.In
	Scheduler *Scheduler
	Indexes   *indexes.Service
	Cfg       *config.Config
	Log       *slog.Logger
}

// RegisterTasks registers the index sweep. A cron schedule takes precedence
// over the interval when both are set.
func RegisterTasks(p TaskParams) error {
	cfg := p.Cfg.Scheduler
	if !cfg.Enabled {
		p.Log.Info("scheduler disabled, skipping task registration", logger.Scope("scheduler"))
		return nil
	}

	sweep := NewIndexSweepTask(p.Indexes, p.Log)
	if cfg.IndexSweepSchedule != "" {
		return p.Scheduler.AddCronTask(IndexSweepTaskName, cfg.IndexSweepSchedule, sweep.Run)
	}
	return p.Scheduler.AddIntervalTask(IndexSweepTaskName, cfg.IndexSweepInterval, sweep.Run)
}

// RegisterSchedulerLifecycle starts and stops the scheduler with the app.
func RegisterSchedulerLifecycle(lc fx.Lifecycle, s *Scheduler, cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
