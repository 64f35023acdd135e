// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

// Package audit provides the append-only audit entry writer shared by
// the Policy Gate, Write Gateway, and Connector Proxy. Each emits
// domain.AuditEntry values through the same narrow Record interface;
// Writer batches them and flushes to a durable sink on a fixed interval
// or when a batch fills, so a burst of activity never blocks the caller
// on an individual insert.
package audit
