package mutations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kartograph_mutation_batches_total",
		Help: "Total number of mutation batches by outcome",
	}, []string{"outcome"})

	operationsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kartograph_mutation_operations_applied_total",
		Help: "Total number of mutation operations applied",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kartograph_mutation_batch_duration_seconds",
		Help:    "Mutation batch apply latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	})
)

func outcome(r *MutationResult) string {
	if r.Success {
		return "success"
	}
	return string(r.Failure)
}
