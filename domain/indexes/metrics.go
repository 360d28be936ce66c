package indexes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indexesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kartograph_graph_indexes_created_total",
		Help: "Total number of label indexes created",
	}, []string{"kind"})

	indexErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kartograph_graph_index_errors_total",
		Help: "Total number of failed index creations",
	}, []string{"kind"})
)
