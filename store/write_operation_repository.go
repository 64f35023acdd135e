// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// WriteOperationRepository implements writegateway.Repository against a
// write_operations table.
type WriteOperationRepository struct {
	db *sql.DB
}

// NewWriteOperationRepository constructs a WriteOperationRepository.
func NewWriteOperationRepository(db *sql.DB) *WriteOperationRepository {
	return &WriteOperationRepository{db: db}
}

// EnsureWriteOperationSchema creates the write_operations table. Kept
// separate from store.EnsureSchema so a deployment that runs the write
// gateway without the rest of the core can apply only what it needs.
func EnsureWriteOperationSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS write_operations (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			requesting_principal TEXT NOT NULL,
			connector TEXT NOT NULL,
			operation TEXT NOT NULL,
			parameters JSONB NOT NULL DEFAULT '{}',
			risk TEXT NOT NULL,
			rationale TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL,
			approver_principal TEXT NOT NULL DEFAULT '',
			approval_reason TEXT NOT NULL DEFAULT '',
			requested_at TIMESTAMPTZ NOT NULL,
			deadline_at TIMESTAMPTZ NOT NULL,
			result_payload JSONB NOT NULL DEFAULT '{}',
			rollback_handle TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_schema_failed", "failed to apply write_operations schema", err)
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_write_ops_tenant_state ON write_operations (tenant_id, state)`)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_index_failed", "failed to create write_operations index", err)
	}
	return nil
}

const writeOpColumns = `id, tenant_id, requesting_principal, connector, operation, parameters, risk, rationale,
	state, approver_principal, approval_reason, requested_at, deadline_at, result_payload, rollback_handle`

func (r *WriteOperationRepository) Get(ctx context.Context, tenantID, id string) (domain.WriteOperation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+writeOpColumns+` FROM write_operations WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	op, err := scanWriteOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WriteOperation{}, corexerr.New(corexerr.Validation, "write_operation_not_found", "write operation not found")
	}
	if err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Internal, "write_op_get_failed", "failed to load write operation", err)
	}
	return op, nil
}

func (r *WriteOperationRepository) List(ctx context.Context, filter domain.Filter) ([]domain.WriteOperation, error) {
	if !filter.Valid() {
		return nil, corexerr.Validationf("tenant_id", "filter must carry a tenant scope")
	}
	return r.query(ctx, `SELECT `+writeOpColumns+` FROM write_operations WHERE tenant_id = $1 ORDER BY requested_at DESC`, filter.TenantID)
}

func (r *WriteOperationRepository) ListByState(ctx context.Context, tenantID string, state domain.WriteOperationState) ([]domain.WriteOperation, error) {
	return r.query(ctx, `SELECT `+writeOpColumns+` FROM write_operations WHERE tenant_id = $1 AND state = $2`, tenantID, string(state))
}

// ListExpired returns PROPOSED operations across every tenant whose
// deadline has passed, for the background timeout sweep.
func (r *WriteOperationRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]domain.WriteOperation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+writeOpColumns+` FROM write_operations WHERE state = $1 AND deadline_at < $2`,
		string(domain.WriteStateProposed), cutoff)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "write_op_expired_list_failed", "failed to list expired write operations", err)
	}
	defer rows.Close()

	var ops []domain.WriteOperation
	for rows.Next() {
		op, err := scanWriteOperation(rows)
		if err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "write_op_scan_failed", "failed to scan write operation row", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (r *WriteOperationRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.WriteOperation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "write_op_list_failed", "failed to list write operations", err)
	}
	defer rows.Close()

	var ops []domain.WriteOperation
	for rows.Next() {
		op, err := scanWriteOperation(rows)
		if err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "write_op_scan_failed", "failed to scan write operation row", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (r *WriteOperationRepository) Create(ctx context.Context, op domain.WriteOperation) error {
	parameters, err := json.Marshal(op.Parameters)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_marshal_failed", "failed to marshal write operation parameters", err)
	}
	result, err := json.Marshal(op.ResultPayload)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_marshal_failed", "failed to marshal write operation result", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO write_operations (`+writeOpColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		op.ID, op.TenantID, op.RequestingPrincipal, op.Connector, op.Operation, parameters, string(op.Risk),
		op.Rationale, string(op.State), op.ApproverPrincipal, op.ApprovalReason, op.RequestedAt, op.DeadlineAt,
		result, op.RollbackHandle)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_create_failed", "failed to insert write operation", err)
	}
	return nil
}

func (r *WriteOperationRepository) Update(ctx context.Context, op domain.WriteOperation) error {
	result, err := json.Marshal(op.ResultPayload)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_marshal_failed", "failed to marshal write operation result", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE write_operations SET state = $3, approver_principal = $4, approval_reason = $5,
			result_payload = $6, rollback_handle = $7
		WHERE tenant_id = $1 AND id = $2`,
		op.TenantID, op.ID, string(op.State), op.ApproverPrincipal, op.ApprovalReason, result, op.RollbackHandle)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_update_failed", "failed to update write operation", err)
	}
	return requireRowsAffected(res, "write_operation_not_found", "write operation not found")
}

func (r *WriteOperationRepository) Delete(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM write_operations WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "write_op_delete_failed", "failed to delete write operation", err)
	}
	return requireRowsAffected(res, "write_operation_not_found", "write operation not found")
}

func scanWriteOperation(row rowScanner) (domain.WriteOperation, error) {
	var op domain.WriteOperation
	var parameters, result []byte
	var risk, state string
	if err := row.Scan(&op.ID, &op.TenantID, &op.RequestingPrincipal, &op.Connector, &op.Operation, &parameters,
		&risk, &op.Rationale, &state, &op.ApproverPrincipal, &op.ApprovalReason, &op.RequestedAt, &op.DeadlineAt,
		&result, &op.RollbackHandle); err != nil {
		return domain.WriteOperation{}, err
	}
	op.Risk = domain.RiskLevel(risk)
	op.State = domain.WriteOperationState(state)
	if len(parameters) > 0 {
		if err := json.Unmarshal(parameters, &op.Parameters); err != nil {
			return domain.WriteOperation{}, err
		}
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &op.ResultPayload); err != nil {
			return domain.WriteOperation{}, err
		}
	}
	return op, nil
}
