package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kartograph_read_queries_total",
		Help: "Total number of read queries by outcome",
	}, []string{"outcome"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kartograph_read_query_duration_seconds",
		Help:    "Read query latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	})

	rowsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kartograph_read_query_rows",
		Help:    "Rows returned per read query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
