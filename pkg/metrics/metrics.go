// Package metrics exports generator run results in the Prometheus text
// format, for collection through the node-exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/geteduroam/discogen/pkg/models"
)

const namespace = "discogen"

// Collector holds the gauges describing the last generator run.
type Collector struct {
	registry *prometheus.Registry

	seq          prometheus.Gauge
	changed      prometheus.Gauge
	instances    prometheus.Gauge
	duration     prometheus.Gauge
	lastRun      prometheus.Gauge
	requests     *prometheus.GaugeVec
	cacheEntries *prometheus.GaugeVec
}

// New returns a Collector backed by its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		seq: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sequence_number",
			Help:      "Sequence number of the published discovery documents.",
		}),
		changed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_published",
			Help:      "1 if the last run advanced the sequence number.",
		}),
		instances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "instances",
			Help:      "Number of instances in the generated documents.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		requests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_requests",
			Help:      "Catalog requests issued by the last run.",
		}, []string{"source"}),
		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Entries in the catalog cache store.",
		}, []string{"backend"}),
	}
	c.registry.MustRegister(c.seq, c.changed, c.instances, c.duration, c.lastRun, c.requests, c.cacheEntries)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRun records the outcome of a generator run.
func (c *Collector) ObserveRun(r models.RunRecord) {
	c.seq.Set(float64(r.Seq))
	if r.Published() {
		c.changed.Set(1)
	} else {
		c.changed.Set(0)
	}
	c.instances.Set(float64(r.Instances))
	c.duration.Set(r.FinishedAt.Sub(r.StartedAt).Seconds())
	c.lastRun.Set(float64(r.FinishedAt.Unix()))

	stats := models.FetchStats{Requests: r.Requests, NetworkRequests: r.NetworkRequests}
	c.requests.WithLabelValues("network").Set(float64(stats.NetworkRequests))
	c.requests.WithLabelValues("cache").Set(float64(stats.CacheHits()))
}

// ObserveCache records the size of the catalog cache.
func (c *Collector) ObserveCache(s models.CacheStats) {
	c.cacheEntries.WithLabelValues(s.Backend).Set(float64(s.Entries))
}

// WriteTextfile writes all metrics to path, replacing it atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
