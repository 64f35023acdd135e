// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package worker

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes worker throughput as Prometheus series and keeps a
// parallel set of atomic counters so the metric aggregator job can build
// a Snapshot without reaching into Prometheus's own storage.
type Collector struct {
	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	queueDepth   prometheus.Gauge

	processed map[JobKind]*int64
	failed    map[JobKind]*int64
}

var allJobKinds = []JobKind{JobIngestion, JobMetricAggregate, JobTimeoutSweep, JobMemoryMaintenance}

// NewCollector registers the worker pool's series against registerer.
// Pass prometheus.DefaultRegisterer in production; tests should pass a
// fresh prometheus.NewRegistry() so repeated construction never collides.
func NewCollector(registerer prometheus.Registerer) *Collector {
	c := &Collector{
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_worker_jobs_total",
			Help: "Total number of worker jobs processed, by kind and outcome.",
		}, []string{"kind", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentcore_worker_job_duration_seconds",
			Help:    "Worker job handler duration in seconds, by kind.",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		}, []string{"kind"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "agentcore_worker_queue_depth",
			Help: "Current number of jobs waiting in the worker queue.",
		}),
		processed: make(map[JobKind]*int64, len(allJobKinds)),
		failed:    make(map[JobKind]*int64, len(allJobKinds)),
	}
	for _, kind := range allJobKinds {
		c.processed[kind] = new(int64)
		c.failed[kind] = new(int64)
	}
	registerer.MustRegister(c.jobsTotal, c.jobDuration, c.queueDepth)
	return c
}

func (c *Collector) recordJob(kind JobKind, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		atomic.AddInt64(c.failed[kind], 1)
	} else {
		atomic.AddInt64(c.processed[kind], 1)
	}
	c.jobsTotal.WithLabelValues(string(kind), status).Inc()
	c.jobDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

func (c *Collector) setQueueDepth(n int) {
	c.queueDepth.Set(float64(n))
}

// Snapshot builds a point-in-time Snapshot from the atomic counters.
// queueDepth is sampled separately since it is a gauge of the caller's
// live queue, not something the collector owns.
func (c *Collector) Snapshot(queueDepth int) Snapshot {
	snap := Snapshot{
		Timestamp:       time.Now().UTC(),
		QueueDepth:      queueDepth,
		ProcessedByKind: make(map[JobKind]int64, len(allJobKinds)),
		FailedByKind:    make(map[JobKind]int64, len(allJobKinds)),
	}
	for _, kind := range allJobKinds {
		snap.ProcessedByKind[kind] = atomic.LoadInt64(c.processed[kind])
		snap.FailedByKind[kind] = atomic.LoadInt64(c.failed[kind])
	}
	return snap
}
