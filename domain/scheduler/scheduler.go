package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// TaskFunc is a unit of scheduled work.
type TaskFunc func(ctx context.Context) error

// defaultTaskTimeout bounds a single task run.
const defaultTaskTimeout = 30 * time.Minute

// Scheduler runs named tasks on cron expressions or fixed intervals.
// A run that is still in progress when its next tick fires is skipped.
type Scheduler struct {
	cron        *cron.Cron
	log         *slog.Logger
	taskTimeout time.Duration

	mu      sync.RWMutex
	tasks   map[string]entry
	running bool
}

type entry struct {
	id       cron.EntryID
	schedule string
}

// NewScheduler creates a scheduler with seconds precision cron parsing.
func NewScheduler(log *slog.Logger) *Scheduler {
	log = log.With(logger.Scope("scheduler"))
	cronLog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelWarn))

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log:         log,
		taskTimeout: defaultTaskTimeout,
		tasks:       make(map[string]entry),
	}
}

// Start begins dispatching tasks. It is a no-op when already running.
func (s *Scheduler) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.cron.Start()
	s.running = true
	s.log.Info("scheduler started", slog.Int("tasks", len(s.tasks)))
	return nil
}

// Stop waits for running tasks to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out, abandoning running tasks")
	}
	s.running = false
	return nil
}

// AddCronTask registers task under a six-field cron expression
// ("second minute hour day-of-month month day-of-week") or a descriptor
// such as "@hourly". A task with the same name is replaced.
func (s *Scheduler) AddCronTask(name, schedule string, task TaskFunc) error {
	return s.add(name, schedule, task)
}

// AddIntervalTask registers task to run every interval.
func (s *Scheduler) AddIntervalTask(name string, interval time.Duration, task TaskFunc) error {
	return s.add(name, "@every "+interval.String(), task)
}

func (s *Scheduler) add(name, schedule string, task TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[name]; ok {
		s.cron.Remove(old.id)
		delete(s.tasks, name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.runTask(name, task) })
	if err != nil {
		return err
	}
	s.tasks[name] = entry{id: id, schedule: schedule}
	s.log.Info("added task", slog.String("name", name), slog.String("schedule", schedule))
	return nil
}

// RemoveTask unregisters a task. Unknown names are ignored.
func (s *Scheduler) RemoveTask(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.tasks[name]; ok {
		s.cron.Remove(e.id)
		delete(s.tasks, name)
		s.log.Info("removed task", slog.String("name", name))
	}
}

// RunNow runs a registered task synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string, task TaskFunc) {
	s.runTask(name, task)
}

func (s *Scheduler) runTask(name string, task TaskFunc) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
	defer cancel()

	err := task(ctx)
	taskDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		taskRunsTotal.WithLabelValues(name, "error").Inc()
		s.log.Error("scheduled task failed",
			slog.String("name", name),
			slog.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return
	}
	taskRunsTotal.WithLabelValues(name, "success").Inc()
	s.log.Debug("scheduled task completed",
		slog.String("name", name),
		slog.Duration("duration", time.Since(start)),
	)
}

// ListTasks returns the registered task names, sorted.
func (s *Scheduler) ListTasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TaskInfo describes a registered task.
type TaskInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
	PrevRun  time.Time `json:"prev_run,omitempty"`
}

// GetTaskInfo returns schedule details for every registered task.
func (s *Scheduler) GetTaskInfo() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := make([]TaskInfo, 0, len(s.tasks))
	for name, e := range s.tasks {
		ce := s.cron.Entry(e.id)
		info = append(info, TaskInfo{
			Name:     name,
			Schedule: e.schedule,
			NextRun:  ce.Next,
			PrevRun:  ce.Prev,
		})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].Name < info[j].Name })
	return info
}

// IsRunning reports whether Start has been called without Stop.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
