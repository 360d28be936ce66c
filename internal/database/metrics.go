package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	totalConnsDesc = prometheus.NewDesc("kartograph_db_pool_connections",
		"Connections currently in the pool by state.", []string{"state"}, nil)
	maxConnsDesc = prometheus.NewDesc("kartograph_db_pool_max_connections",
		"Configured pool size.", nil, nil)
	acquireCountDesc = prometheus.NewDesc("kartograph_db_pool_acquires_total",
		"Successful connection acquisitions.", nil, nil)
	acquireWaitDesc = prometheus.NewDesc("kartograph_db_pool_acquire_wait_seconds_total",
		"Time spent waiting for a connection.", nil, nil)
)

// poolCollector reads pgxpool statistics at scrape time.
type poolCollector struct {
	pool *pgxpool.Pool
}

func newPoolCollector(pool *pgxpool.Pool) *poolCollector {
	return &poolCollector{pool: pool}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- totalConnsDesc
	ch <- maxConnsDesc
	ch <- acquireCountDesc
	ch <- acquireWaitDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(totalConnsDesc, prometheus.GaugeValue, float64(s.AcquiredConns()), "acquired")
	ch <- prometheus.MustNewConstMetric(totalConnsDesc, prometheus.GaugeValue, float64(s.IdleConns()), "idle")
	ch <- prometheus.MustNewConstMetric(totalConnsDesc, prometheus.GaugeValue, float64(s.ConstructingConns()), "constructing")
	ch <- prometheus.MustNewConstMetric(maxConnsDesc, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(acquireCountDesc, prometheus.CounterValue, float64(s.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(acquireWaitDesc, prometheus.CounterValue, s.AcquireDuration().Seconds())
}

// registerCollector tolerates a collector left behind by an earlier app in
// the same process (tests build several).
func registerCollector(c prometheus.Collector) error {
	err := prometheus.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		prometheus.Unregister(are.ExistingCollector)
		return prometheus.Register(c)
	}
	return err
}

func unregisterCollector(c prometheus.Collector) {
	prometheus.Unregister(c)
}
