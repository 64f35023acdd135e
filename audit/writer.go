// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package audit

import (
	"context"
	"sync"
	"time"

	"agentcore/platform/domain"
	"agentcore/platform/shared/logger"
)

// Store persists a batch of audit entries durably. WriteBatch must be
// safe to call concurrently with itself only if the caller does so; a
// Writer never calls it from more than one goroutine at a time.
type Store interface {
	WriteBatch(ctx context.Context, entries []domain.AuditEntry) error
}

// Writer implements policy.AuditSink, writegateway.AuditSink, and
// connectorproxy.AuditSink — all three are the identical
// Record(ctx, domain.AuditEntry) error shape, so one Writer satisfies all
// three call sites without adaptation.
//
// Entries are queued on a buffered channel and drained by a single
// background goroutine that batches them for Store.WriteBatch, flushing
// either when a batch fills or on a fixed interval, whichever comes
// first. If the queue is full, Record falls back to writing the entry
// directly so a caller never silently loses an audit entry under load.
type Writer struct {
	store     Store
	batchSize int

	queue    chan domain.AuditEntry
	shutdown chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	pending []domain.AuditEntry

	log *logger.Logger
}

// NewWriter starts the background flush goroutine. queueCapacity bounds
// how many entries may be buffered before Record falls back to a direct
// synchronous write; flushInterval bounds how long an entry can sit in
// the buffer before it's persisted.
func NewWriter(store Store, batchSize, queueCapacity int, flushInterval time.Duration) *Writer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if queueCapacity <= 0 {
		queueCapacity = 10000
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	w := &Writer{
		store:     store,
		batchSize: batchSize,
		queue:     make(chan domain.AuditEntry, queueCapacity),
		shutdown:  make(chan struct{}),
		pending:   make([]domain.AuditEntry, 0, batchSize),
		log:       logger.New("audit"),
	}
	w.wg.Add(1)
	go w.run(flushInterval)
	return w
}

// Record implements the AuditSink interface shared by policy, write
// gateway, and connector proxy.
func (w *Writer) Record(ctx context.Context, entry domain.AuditEntry) error {
	select {
	case w.queue <- entry:
		return nil
	default:
		w.log.Warn(entry.PrincipalID, entry.ID, "audit queue full, writing entry directly", map[string]interface{}{"event_kind": entry.EventKind})
		return w.store.WriteBatch(ctx, []domain.AuditEntry{entry})
	}
}

// Close flushes any buffered entries and stops the background goroutine.
func (w *Writer) Close(ctx context.Context) error {
	close(w.shutdown)
	w.wg.Wait()
	return w.flush(ctx)
}

func (w *Writer) run(flushInterval time.Duration) {
	defer w.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-w.queue:
			w.add(entry)
		case <-ticker.C:
			if err := w.flush(context.Background()); err != nil {
				w.log.Error("", "", "periodic audit flush failed", map[string]interface{}{"error": err.Error()})
			}
		case <-w.shutdown:
			// Drain whatever is already queued before returning; Close
			// performs the final flush after this goroutine exits.
			for {
				select {
				case entry := <-w.queue:
					w.add(entry)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) add(entry domain.AuditEntry) {
	w.mu.Lock()
	w.pending = append(w.pending, entry)
	full := len(w.pending) >= w.batchSize
	w.mu.Unlock()

	if full {
		if err := w.flush(context.Background()); err != nil {
			w.log.Error("", "", "audit batch flush failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *Writer) flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return nil
	}
	batch := w.pending
	w.pending = make([]domain.AuditEntry, 0, w.batchSize)
	w.mu.Unlock()

	return w.store.WriteBatch(ctx, batch)
}
