// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// MemoryRepository implements memory.Repository against the memories
// table.
type MemoryRepository struct {
	db *sql.DB
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository(db *sql.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

const memoryColumns = `id, tenant_id, scope, scope_id, kind, content, provenance, importance, embedding, access_count, expires_at, created_at, last_accessed`

func (r *MemoryRepository) Get(ctx context.Context, tenantID, id string) (domain.Memory, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Memory{}, corexerr.New(corexerr.Validation, "memory_not_found", "memory not found")
	}
	if err != nil {
		return domain.Memory{}, corexerr.Wrap(corexerr.Internal, "memory_get_failed", "failed to load memory", err)
	}
	return m, nil
}

func (r *MemoryRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Memory, error) {
	if !filter.Valid() {
		return nil, corexerr.Validationf("tenant_id", "filter must carry a tenant scope")
	}
	return r.query(ctx, `SELECT `+memoryColumns+` FROM memories WHERE tenant_id = $1 ORDER BY created_at DESC`, filter.TenantID)
}

func (r *MemoryRepository) ListByScope(ctx context.Context, tenantID string, scope domain.MemoryScope, scopeID string) ([]domain.Memory, error) {
	return r.query(ctx, `SELECT `+memoryColumns+` FROM memories WHERE tenant_id = $1 AND scope = $2 AND scope_id = $3 ORDER BY importance DESC`,
		tenantID, string(scope), scopeID)
}

func (r *MemoryRepository) ListAll(ctx context.Context, tenantID string) ([]domain.Memory, error) {
	return r.query(ctx, `SELECT `+memoryColumns+` FROM memories WHERE tenant_id = $1`, tenantID)
}

func (r *MemoryRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Memory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "memory_list_failed", "failed to list memories", err)
	}
	defer rows.Close()

	var memories []domain.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "memory_scan_failed", "failed to scan memory row", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func (r *MemoryRepository) Create(ctx context.Context, m domain.Memory) error {
	embedding, err := json.Marshal(m.Embedding)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "memory_embedding_marshal_failed", "failed to marshal memory embedding", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO memories (id, tenant_id, scope, scope_id, kind, content, provenance, importance, embedding,
			access_count, expires_at, created_at, last_accessed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.TenantID, string(m.Scope), m.ScopeID, string(m.Kind), m.Content, m.Provenance, m.Importance,
		embedding, m.AccessCount, m.ExpiresAt, m.CreatedAt, m.LastAccessed)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "memory_create_failed", "failed to insert memory", err)
	}
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, m domain.Memory) error {
	embedding, err := json.Marshal(m.Embedding)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "memory_embedding_marshal_failed", "failed to marshal memory embedding", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE memories SET content = $3, importance = $4, embedding = $5, access_count = $6,
			expires_at = $7, last_accessed = $8
		WHERE tenant_id = $1 AND id = $2`,
		m.TenantID, m.ID, m.Content, m.Importance, embedding, m.AccessCount, m.ExpiresAt, m.LastAccessed)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "memory_update_failed", "failed to update memory", err)
	}
	return requireRowsAffected(res, "memory_not_found", "memory not found")
}

func (r *MemoryRepository) Delete(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "memory_delete_failed", "failed to delete memory", err)
	}
	return requireRowsAffected(res, "memory_not_found", "memory not found")
}

func scanMemory(row rowScanner) (domain.Memory, error) {
	var m domain.Memory
	var embedding []byte
	var scope, kind string
	if err := row.Scan(&m.ID, &m.TenantID, &scope, &m.ScopeID, &kind, &m.Content, &m.Provenance, &m.Importance,
		&embedding, &m.AccessCount, &m.ExpiresAt, &m.CreatedAt, &m.LastAccessed); err != nil {
		return domain.Memory{}, err
	}
	m.Scope = domain.MemoryScope(scope)
	m.Kind = domain.MemoryKind(kind)
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &m.Embedding); err != nil {
			return domain.Memory{}, fmt.Errorf("failed to unmarshal memory embedding: %w", err)
		}
	}
	return m, nil
}
