package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolStat struct {
	desc  *prometheus.Desc
	value func(*pgxpool.Stat) float64
}

type pgxpoolStatsCollector struct {
	pool  *pgxpool.Pool
	stats []poolStat
}

// RegisterPgxpoolStatsCollector exports the pool's statistics as pgxpool_* gauges
func RegisterPgxpoolStatsCollector(pool *pgxpool.Pool) {
	prometheus.MustRegister(newPgxpoolStatsCollector(pool))
}

func newPgxpoolStatsCollector(pool *pgxpool.Pool) *pgxpoolStatsCollector {
	stat := func(name, help string, value func(*pgxpool.Stat) float64) poolStat {
		return poolStat{desc: prometheus.NewDesc("pgxpool_"+name, help, nil, nil), value: value}
	}
	return &pgxpoolStatsCollector{
		pool: pool,
		stats: []poolStat{
			stat("acquire_count", "The cumulative count of successful acquires from the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
			stat("acquired_duration", "The total duration of all successful acquires from the pool.",
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
			stat("acquired_conns", "The number of currently acquired connections in the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
			stat("canceled_acquire_count", "The cumulative count of acquires from the pool that were canceled by a context.",
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }),
			stat("constructing_conns", "The number of conns with construction in progress in the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.ConstructingConns()) }),
			stat("empty_acquire_count", "The cumulative count of successful acquires that waited because the pool was empty.",
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
			stat("idle_conns", "The number of currently idle conns in the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
			stat("total_conns", "The total number of resources currently in the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
			stat("max_conns", "The maximum size of the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
			stat("new_conns_count", "The cumulative count of new connections opened.",
				func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) }),
			stat("max_lifetime_destroy_count", "The cumulative count of connections destroyed because they exceeded MaxConnLifetime.",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxLifetimeDestroyCount()) }),
			stat("max_idle_destroy_count", "The cumulative count of connections destroyed because they exceeded MaxConnIdleTime.",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxIdleDestroyCount()) }),
		},
	}
}

func (c *pgxpoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

func (c *pgxpoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stat()
	for _, s := range c.stats {
		ch <- prometheus.MustNewConstMetric(s.desc, prometheus.GaugeValue, s.value(stats))
	}
}
