// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"agentcore/platform/shared/logger"
)

// Config controls pool concurrency, queue sizing, and the scheduling
// cadence of the three self-scheduled job kinds.
type Config struct {
	Concurrency                int
	QueueCapacity              int
	MetricFlushInterval        time.Duration
	TimeoutSweepInterval       time.Duration
	MemoryMaintenanceInterval time.Duration
}

// DefaultConfig matches the spec's default concurrency of 4.
func DefaultConfig() Config {
	return Config{
		Concurrency:               4,
		QueueCapacity:             1000,
		MetricFlushInterval:       time.Minute,
		TimeoutSweepInterval:      30 * time.Second,
		MemoryMaintenanceInterval: time.Hour,
	}
}

// Pool is the background worker pool. It owns one bounded job queue and a
// fixed number of worker goroutines that consume it, plus a cron
// scheduler that periodically enqueues the metric aggregation, timeout
// sweep, and memory maintenance jobs.
type Pool struct {
	cfg Config

	queue     chan Job
	ingestor  Ingestor
	sweeper   TimeoutSweeper
	decayer   MemoryDecayer
	tenants   TenantLister
	sink      MetricsSink
	collector *Collector

	cron *cron.Cron
	wg   sync.WaitGroup
	log  *logger.Logger

	stopOnce sync.Once
}

// New constructs a Pool. Any of ingestor, sweeper, decayer, tenants, or
// sink may be nil; the corresponding job kind is then a logged no-op,
// which lets a deployment run the pool with only the jobs it needs wired.
func New(cfg Config, ingestor Ingestor, sweeper TimeoutSweeper, decayer MemoryDecayer, tenants TenantLister, sink MetricsSink, collector *Collector) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1000
	}
	return &Pool{
		cfg:       cfg,
		queue:     make(chan Job, cfg.QueueCapacity),
		ingestor:  ingestor,
		sweeper:   sweeper,
		decayer:   decayer,
		tenants:   tenants,
		sink:      sink,
		collector: collector,
		cron:      cron.New(),
		log:       logger.New("worker.pool"),
	}
}

// Start launches the worker goroutines and schedules the self-driven job
// kinds. ctx governs the lifetime of every handler invocation; cancelling
// it does not stop the pool by itself, Stop does.
func (p *Pool) Start(ctx context.Context) error {
	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}

	schedule := func(interval time.Duration, kind JobKind) error {
		_, err := p.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
			p.enqueueSystemJob(kind)
		})
		return err
	}
	if err := schedule(p.cfg.MetricFlushInterval, JobMetricAggregate); err != nil {
		return fmt.Errorf("worker: schedule metric aggregator: %w", err)
	}
	if err := schedule(p.cfg.TimeoutSweepInterval, JobTimeoutSweep); err != nil {
		return fmt.Errorf("worker: schedule timeout sweeper: %w", err)
	}
	if err := schedule(p.cfg.MemoryMaintenanceInterval, JobMemoryMaintenance); err != nil {
		return fmt.Errorf("worker: schedule memory maintenance: %w", err)
	}
	p.cron.Start()
	return nil
}

// Stop stops the cron scheduler, closes the queue, and waits for every
// in-flight and queued job to drain before returning.
func (p *Pool) Stop(ctx context.Context) error {
	var stopErr error
	p.stopOnce.Do(func() {
		cronCtx := p.cron.Stop()
		select {
		case <-cronCtx.Done():
		case <-ctx.Done():
			stopErr = ctx.Err()
		}
		close(p.queue)
		p.wg.Wait()
	})
	return stopErr
}

// Submit enqueues an ingestion job, blocking until there is room or ctx
// is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit enqueues an ingestion job without blocking, returning
// ErrQueueFull if the queue is at capacity.
func (p *Pool) TrySubmit(job Job) error {
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// enqueueSystemJob is used by the cron callbacks. It never blocks: a
// full queue just means this tick is skipped and the next one retries.
func (p *Pool) enqueueSystemJob(kind JobKind) {
	job := Job{Kind: kind, EnqueuedAt: time.Now().UTC()}
	if err := p.TrySubmit(job); err != nil {
		p.log.Warn("", "", "dropped scheduled job, queue full", map[string]interface{}{"kind": string(kind)})
	}
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.queue {
		if p.collector != nil {
			p.collector.setQueueDepth(len(p.queue))
		}
		p.dispatch(ctx, job)
	}
}

// dispatch runs the handler for job.Kind, recovering a panic into a
// logged error so one bad job never takes down a worker goroutine.
func (p *Pool) dispatch(ctx context.Context, job Job) {
	start := time.Now()
	err := p.runHandler(ctx, job)
	if p.collector != nil {
		p.collector.recordJob(job.Kind, time.Since(start), err)
	}
	if err != nil {
		p.log.Error("", "", "worker job failed", map[string]interface{}{
			"kind":  string(job.Kind),
			"error": err.Error(),
		})
	}
}

func (p *Pool) runHandler(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker job panicked: %v", r)
		}
	}()

	switch job.Kind {
	case JobIngestion:
		if p.ingestor == nil || job.Document == nil {
			return nil
		}
		return p.ingestor.Ingest(ctx, *job.Document)
	case JobMetricAggregate:
		if p.sink == nil || p.collector == nil {
			return nil
		}
		return p.sink.Persist(ctx, p.collector.Snapshot(len(p.queue)))
	case JobTimeoutSweep:
		if p.sweeper == nil {
			return nil
		}
		_, err := p.sweeper.SweepTimeouts(ctx)
		return err
	case JobMemoryMaintenance:
		return p.runMemoryMaintenance(ctx)
	default:
		return fmt.Errorf("worker: unknown job kind %q", job.Kind)
	}
}

// runMemoryMaintenance fans the single scheduled tick out across every
// tenant. One tenant's failure is logged and does not stop the sweep of
// the rest.
func (p *Pool) runMemoryMaintenance(ctx context.Context) error {
	if p.decayer == nil || p.tenants == nil {
		return nil
	}
	tenantIDs, err := p.tenants.ListTenantIDs(ctx)
	if err != nil {
		return fmt.Errorf("worker: list tenants for memory maintenance: %w", err)
	}
	now := time.Now().UTC()
	for _, tenantID := range tenantIDs {
		if _, err := p.decayer.Decay(ctx, tenantID, now); err != nil {
			p.log.Error("", "", "memory decay failed for tenant", map[string]interface{}{
				"tenant_id": tenantID,
				"error":     err.Error(),
			})
		}
	}
	return nil
}

// QueueDepth returns the current number of jobs waiting in the queue.
func (p *Pool) QueueDepth() int {
	return len(p.queue)
}
