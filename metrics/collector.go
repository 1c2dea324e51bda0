// File: metrics/collector.go
// Author: fmontorsi
// License: BSD license

// Package metrics exports pool accounting counters to Prometheus without
// touching the pool from the scrape path. Pools are single-threaded by
// design, so the owning goroutine pushes api.Stats snapshots into a
// Collector; the Collector owns its own synchronization and serves the last
// snapshot to scrapes.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/f18m/boost-intrusive-pool/api"
)

// Collector is a prometheus.Collector fed with pool stats snapshots.
//
//	col := metrics.NewCollector("events")
//	prometheus.MustRegister(col)
//	...
//	col.Observe(p.Stats()) // from the pool's owning goroutine
type Collector struct {
	mu   sync.RWMutex
	last api.Stats

	capacity    *prometheus.Desc
	free        *prometheus.Desc
	inUse       *prometheus.Desc
	growthSteps *prometheus.Desc
	exhausted   *prometheus.Desc
}

// NewCollector builds a collector for one pool; name becomes the "pool"
// label on every metric.
func NewCollector(name string) *Collector {
	labels := prometheus.Labels{"pool": name}
	return &Collector{
		capacity: prometheus.NewDesc(
			"intrusive_pool_capacity_slots",
			"Total number of slots across all pool arenas.",
			nil, labels),
		free: prometheus.NewDesc(
			"intrusive_pool_free_slots",
			"Number of slots currently on the free list.",
			nil, labels),
		inUse: prometheus.NewDesc(
			"intrusive_pool_inuse_slots",
			"Number of slots referenced by live handles.",
			nil, labels),
		growthSteps: prometheus.NewDesc(
			"intrusive_pool_growth_steps_total",
			"Number of arena allocations performed, including the initial one.",
			nil, labels),
		exhausted: prometheus.NewDesc(
			"intrusive_pool_exhausted",
			"1 when the last allocation attempt failed for lack of capacity.",
			nil, labels),
	}
}

// Observe records a new snapshot, replacing the previous one.
func (c *Collector) Observe(s api.Stats) {
	c.mu.Lock()
	c.last = s
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.free
	ch <- c.inUse
	ch <- c.growthSteps
	ch <- c.exhausted
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	s := c.last
	c.mu.RUnlock()

	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.free, prometheus.GaugeValue, float64(s.Free))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse))
	ch <- prometheus.MustNewConstMetric(c.growthSteps, prometheus.CounterValue, float64(s.GrowthSteps))

	exhausted := 0.0
	if s.Exhausted {
		exhausted = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.exhausted, prometheus.GaugeValue, exhausted)
}

var _ prometheus.Collector = (*Collector)(nil)
