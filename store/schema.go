// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables backing the document, chunk, memory,
// and budget repositories if they do not already exist. It is safe to
// call on every startup, mirroring audit.PostgresStore.EnsureSchema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			classification INTEGER NOT NULL,
			source_metadata JSONB NOT NULL DEFAULT '{}',
			version INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL,
			feedback_score BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_tenant ON documents (tenant_id)`,
		`CREATE TABLE IF NOT EXISTS document_chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			content TEXT NOT NULL,
			token_count INTEGER NOT NULL,
			embedding JSONB NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_tenant_doc ON document_chunks (tenant_id, document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_content_fts ON document_chunks USING gin (to_tsvector('english', content))`,
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			scope_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			provenance TEXT NOT NULL DEFAULT '',
			importance DOUBLE PRECISION NOT NULL DEFAULT 0,
			embedding JSONB NOT NULL DEFAULT '[]',
			access_count BIGINT NOT NULL DEFAULT 0,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_accessed TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_tenant_scope ON memories (tenant_id, scope, scope_id)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			tenant_id TEXT NOT NULL,
			period TEXT NOT NULL,
			model_tier TEXT NOT NULL,
			token_limit BIGINT NOT NULL,
			consumed BIGINT NOT NULL DEFAULT 0,
			period_start DATE NOT NULL DEFAULT CURRENT_DATE,
			PRIMARY KEY (tenant_id, period, model_tier)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: failed to apply schema statement: %w", err)
		}
	}
	return nil
}
