package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kartograph_scheduler_task_runs_total",
		Help: "Total number of scheduled task runs by task and outcome",
	}, []string{"task", "outcome"})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kartograph_scheduler_task_duration_seconds",
		Help:    "Scheduled task run time",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"task"})
)
