// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

// Package store provides the Postgres-backed persistence and HTTP-backed
// model adapters that wire the core's domain interfaces (memory.Repository,
// retrieval.SemanticSearcher/LexicalSearcher, modelrouter.Provider/
// BudgetLedger, worker.ContentFetcher/ChunkStore) to a real deployment.
// Every type here implements a narrow interface declared by its consuming
// package; store itself depends on database/sql, lib/pq, and net/http
// only, matching the teacher's connectors/postgres and connectors/http
// adapters.
package store
