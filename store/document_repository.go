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

// DocumentRepository implements domain.Repository[domain.Document, string],
// worker.DocumentStatusUpdater, and worker.TenantLister against the
// documents table, grounded on audit.PostgresStore's transaction and
// JSONB-marshaling idiom.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Get(ctx context.Context, tenantID string, id string) (domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, filename, mime_type, classification, source_metadata,
		       version, status, feedback_score, created_at, updated_at
		FROM documents WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, corexerr.New(corexerr.Validation, "document_not_found", "document not found")
	}
	if err != nil {
		return domain.Document{}, corexerr.Wrap(corexerr.Internal, "document_get_failed", "failed to load document", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	if !filter.Valid() {
		return nil, corexerr.Validationf("tenant_id", "filter must carry a tenant scope")
	}
	query := `SELECT id, tenant_id, filename, mime_type, classification, source_metadata,
	       version, status, feedback_score, created_at, updated_at
		FROM documents WHERE tenant_id = $1 ORDER BY created_at DESC`
	args := []interface{}{filter.TenantID}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "document_list_failed", "failed to list documents", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "document_scan_failed", "failed to scan document row", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	metadata, err := json.Marshal(doc.SourceMetadata)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "document_marshal_failed", "failed to marshal source metadata", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO documents (id, tenant_id, filename, mime_type, classification, source_metadata,
			version, status, feedback_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		doc.ID, doc.TenantID, doc.Filename, doc.MimeType, int(doc.Classification), metadata,
		encodeVersion(doc.Version), string(doc.Status), doc.FeedbackScore, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "document_create_failed", "failed to insert document", err)
	}
	return nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc domain.Document) error {
	metadata, err := json.Marshal(doc.SourceMetadata)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "document_marshal_failed", "failed to marshal source metadata", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents SET filename = $3, mime_type = $4, classification = $5, source_metadata = $6,
			version = $7, status = $8, feedback_score = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2`,
		doc.TenantID, doc.ID, doc.Filename, doc.MimeType, int(doc.Classification), metadata,
		encodeVersion(doc.Version), string(doc.Status), doc.FeedbackScore, doc.UpdatedAt)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "document_update_failed", "failed to update document", err)
	}
	return requireRowsAffected(res, "document_not_found", "document not found")
}

func (r *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE tenant_id = $1 AND document_id = $2`, tenantID, id)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "document_delete_chunks_failed", "failed to cascade-delete chunks", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "document_delete_failed", "failed to delete document", err)
	}
	return requireRowsAffected(res, "document_not_found", "document not found")
}

// UpdateStatus implements worker.DocumentStatusUpdater.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, tenantID, documentID string, status domain.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents SET status = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, documentID, string(status))
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "document_status_update_failed", "failed to update document status", err)
	}
	return requireRowsAffected(res, "document_not_found", "document not found")
}

// FeedbackScore implements retrieval.FeedbackProvider.
func (r *DocumentRepository) FeedbackScore(ctx context.Context, documentID string) (int64, error) {
	var score int64
	row := r.db.QueryRowContext(ctx, `SELECT feedback_score FROM documents WHERE id = $1`, documentID)
	if err := row.Scan(&score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, corexerr.Wrap(corexerr.Internal, "feedback_score_failed", "failed to read document feedback score", err)
	}
	return score, nil
}

// AdjustFeedback implements reasoning.ChunkDeprioritizer. The
// identifier reasoning passes is a document ID (feedback is tracked per
// document, not per chunk), delegated here without a tenant scope since
// a cited chunk's document is already known to belong to the caller's
// tenant by construction.
func (r *DocumentRepository) AdjustFeedback(ctx context.Context, documentID string, delta int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE documents SET feedback_score = feedback_score + $2, updated_at = now() WHERE id = $1`, documentID, delta)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "feedback_adjust_failed", "failed to adjust document feedback score", err)
	}
	return requireRowsAffected(res, "document_not_found", "document not found")
}

// ListTenantIDs implements worker.TenantLister by returning every
// distinct tenant with at least one document on record. Memory-only
// tenants are swept the next time they ingest a document; documented as
// an accepted gap in DESIGN.md.
func (r *DocumentRepository) ListTenantIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT tenant_id FROM documents`)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "tenant_list_failed", "failed to list tenants", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "tenant_scan_failed", "failed to scan tenant id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var doc domain.Document
	var metadata []byte
	var classification int
	var version int
	var status string
	if err := row.Scan(&doc.ID, &doc.TenantID, &doc.Filename, &doc.MimeType, &classification, &metadata,
		&version, &status, &doc.FeedbackScore, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return domain.Document{}, err
	}
	doc.Classification = domain.Classification(classification)
	doc.Version = decodeVersion(version)
	doc.Status = domain.DocumentStatus(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.SourceMetadata); err != nil {
			return domain.Document{}, fmt.Errorf("failed to unmarshal source metadata: %w", err)
		}
	}
	return doc, nil
}

// encodeVersion/decodeVersion pack a DocumentVersion into one column as
// major*1000+minor; the roll-up rule caps minor at 8, well under 1000.
func encodeVersion(v domain.DocumentVersion) int {
	return v.Major*1000 + v.Minor
}

func decodeVersion(n int) domain.DocumentVersion {
	return domain.DocumentVersion{Major: n / 1000, Minor: n % 1000}
}

func requireRowsAffected(res sql.Result, code, message string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "rows_affected_failed", "failed to read rows affected", err)
	}
	if n == 0 {
		return corexerr.New(corexerr.Validation, code, message)
	}
	return nil
}
