// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

// Package worker drives asynchronous work off the request path: document
// ingestion, periodic metric persistence, write-operation timeout sweeps,
// and memory decay/compaction.
//
// The pool runs a fixed number of goroutines consuming a single typed job
// queue. Ingestion jobs are submitted by producers (the document upload
// path); the remaining three job kinds are self-scheduled on a cron-style
// interval and enqueued by the pool itself. A handler's failure is logged
// and does not stop the worker goroutine that ran it — only a panic inside
// a handler is treated as fatal to that job, recovered, and logged the
// same way.
package worker
