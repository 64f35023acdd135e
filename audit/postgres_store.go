// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"

	"agentcore/platform/domain"
)

// PostgresStore persists audit entries to a single append-only table,
// grounded on the teacher's BatchWriter.Write/createAuditTables pair:
// one prepared statement executed per entry inside a single transaction
// per batch.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-opened connection pool. The caller
// owns the pool's lifetime.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit_entries table if it does not already
// exist. Safe to call on every startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id                   VARCHAR(255) PRIMARY KEY,
			tenant_id            VARCHAR(255) NOT NULL,
			principal_id         VARCHAR(255) NOT NULL,
			event_kind           VARCHAR(100) NOT NULL,
			resource_kind        VARCHAR(100) NOT NULL,
			resource_id          VARCHAR(255) NOT NULL,
			model_used           VARCHAR(255),
			tool_invocations     JSONB,
			request_fingerprint  VARCHAR(255),
			result_status        VARCHAR(50) NOT NULL,
			latency_ms           DOUBLE PRECISION,
			metadata             JSONB,
			created_at           TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_tenant_id ON audit_entries(tenant_id);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_created_at ON audit_entries(created_at);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_event_kind ON audit_entries(event_kind);
	`)
	return err
}

// WriteBatch persists entries in a single transaction.
func (s *PostgresStore) WriteBatch(ctx context.Context, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_entries (
			id, tenant_id, principal_id, event_kind, resource_kind, resource_id,
			model_used, tool_invocations, request_fingerprint, result_status,
			latency_ms, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, entry := range entries {
		toolInvocations, err := json.Marshal(entry.ToolInvocations)
		if err != nil {
			return err
		}
		metadata, err := json.Marshal(entry.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			entry.ID, entry.TenantID, entry.PrincipalID, entry.EventKind, entry.ResourceKind, entry.ResourceID,
			entry.ModelUsed, toolInvocations, entry.RequestFingerprint, entry.ResultStatus,
			entry.LatencyMS, metadata, entry.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
