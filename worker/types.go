// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package worker

import (
	"context"
	"time"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// JobKind identifies which typed handler a Job is dispatched to.
type JobKind string

const (
	JobIngestion          JobKind = "ingestion"
	JobMetricAggregate    JobKind = "metric_aggregate"
	JobTimeoutSweep       JobKind = "timeout_sweep"
	JobMemoryMaintenance  JobKind = "memory_maintenance"
)

// Job is a single unit of work on the pool's queue.
type Job struct {
	Kind       JobKind
	TenantID   string   // set for per-tenant jobs (ingestion, memory maintenance)
	Document   *domain.Document // set for JobIngestion
	EnqueuedAt time.Time
}

// ErrQueueFull is returned by TrySubmit when the ingestion queue is at
// capacity. Callers that can tolerate blocking should use Submit instead.
var ErrQueueFull = corexerr.New(corexerr.Concurrency, "queue_full", "ingestion queue is full")

// Ingestor consumes a pending Document: extracting text, chunking,
// embedding, persisting chunks, and updating document status.
type Ingestor interface {
	Ingest(ctx context.Context, doc domain.Document) error
}

// TimeoutSweeper scans pending write operations past their approval
// deadline and transitions them. Satisfied by *writegateway.Gateway.
type TimeoutSweeper interface {
	SweepTimeouts(ctx context.Context) (int, error)
}

// MemoryDecayer runs importance decay for a single tenant's memory store.
// Satisfied by *memory.Service.
type MemoryDecayer interface {
	Decay(ctx context.Context, tenantID string, now time.Time) (int, error)
}

// TenantLister enumerates the tenants memory maintenance must sweep.
// Decay is per-tenant while the sweeper job itself is global, so the pool
// needs a way to fan a single scheduled tick out across every tenant.
type TenantLister interface {
	ListTenantIDs(ctx context.Context) ([]string, error)
}

// Snapshot is a point-in-time view of worker throughput handed to a
// MetricsSink for durable persistence.
type Snapshot struct {
	Timestamp       time.Time
	QueueDepth      int
	ProcessedByKind map[JobKind]int64
	FailedByKind    map[JobKind]int64
}

// MetricsSink persists an aggregated metrics Snapshot. The in-process
// counters backing the snapshot are always live via Prometheus; this is
// the durable side-channel the metric aggregator job writes to, matching
// the spec's "periodically persist in-memory counters to durable storage."
type MetricsSink interface {
	Persist(ctx context.Context, snapshot Snapshot) error
}
