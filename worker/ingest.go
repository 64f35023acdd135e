// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package worker

import (
	"context"
	"fmt"
	"strings"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/shared/logger"
)

// ContentFetcher retrieves the raw bytes of a Document's source content.
// In production this is backed by the connector proxy (the document's
// SourceMetadata names the connector and object key it was uploaded
// through); tests use an in-memory fake.
type ContentFetcher interface {
	Fetch(ctx context.Context, doc domain.Document) ([]byte, error)
}

// Embedder computes vector embeddings for a batch of chunk texts. The
// production implementation is an adapter over the model router's
// embedding-capable tier; it is a narrow interface here because the
// router's Route call shape is built for chat completion, not batch
// embedding.
type Embedder interface {
	Embed(ctx context.Context, tenantID string, texts []string) ([][]float32, error)
}

// ChunkStore persists the chunks produced by a single ingestion run.
type ChunkStore interface {
	SaveChunks(ctx context.Context, chunks []domain.DocumentChunk) error
}

// DocumentStatusUpdater transitions a Document's lifecycle status.
type DocumentStatusUpdater interface {
	UpdateStatus(ctx context.Context, tenantID, documentID string, status domain.DocumentStatus) error
}

// IDGenerator allocates chunk identifiers. Kept as an interface so tests
// can supply deterministic IDs.
type IDGenerator interface {
	NewID() string
}

// DocumentIngestor is the reference Ingestor: extract, chunk, embed,
// persist, update status. Chunk sizing mirrors the model router's
// token-estimate heuristic (len(text)/4) rather than a real tokenizer,
// since the core has no tokenizer dependency of its own.
type DocumentIngestor struct {
	fetcher  ContentFetcher
	embedder Embedder
	chunks   ChunkStore
	statuses DocumentStatusUpdater
	ids      IDGenerator

	chunkSizeTokens    int
	chunkOverlapTokens int

	log *logger.Logger
}

// NewDocumentIngestor constructs a DocumentIngestor. chunkSizeTokens and
// chunkOverlapTokens come from deployment configuration (64-2048 and
// 0-256 respectively, overlap always less than size).
func NewDocumentIngestor(fetcher ContentFetcher, embedder Embedder, chunks ChunkStore, statuses DocumentStatusUpdater, ids IDGenerator, chunkSizeTokens, chunkOverlapTokens int) *DocumentIngestor {
	return &DocumentIngestor{
		fetcher:            fetcher,
		embedder:           embedder,
		chunks:             chunks,
		statuses:           statuses,
		ids:                ids,
		chunkSizeTokens:    chunkSizeTokens,
		chunkOverlapTokens: chunkOverlapTokens,
		log:                logger.New("worker.ingest"),
	}
}

// Ingest implements Ingestor.
func (in *DocumentIngestor) Ingest(ctx context.Context, doc domain.Document) error {
	if err := in.statuses.UpdateStatus(ctx, doc.TenantID, doc.ID, domain.DocumentStatusProcessing); err != nil {
		return corexerr.Wrap(corexerr.Internal, "ingest_status_update_failed", "failed to mark document processing", err)
	}

	raw, err := in.fetcher.Fetch(ctx, doc)
	if err != nil {
		in.fail(ctx, doc, "ingest_fetch_failed", "failed to fetch document content", err)
		return corexerr.Wrap(corexerr.Upstream, "ingest_fetch_failed", "failed to fetch document content", err)
	}

	texts := chunkText(string(raw), in.chunkSizeTokens, in.chunkOverlapTokens)
	if len(texts) == 0 {
		in.fail(ctx, doc, "ingest_empty_document", "document produced no chunks", nil)
		return corexerr.New(corexerr.Validation, "ingest_empty_document", "document produced no chunks")
	}

	embeddings, err := in.embedder.Embed(ctx, doc.TenantID, texts)
	if err != nil {
		in.fail(ctx, doc, "ingest_embed_failed", "failed to embed document chunks", err)
		return corexerr.Wrap(corexerr.Upstream, "ingest_embed_failed", "failed to embed document chunks", err)
	}
	if len(embeddings) != len(texts) {
		err := fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(texts))
		in.fail(ctx, doc, "ingest_embed_mismatch", "embedding count mismatch", err)
		return corexerr.Wrap(corexerr.Internal, "ingest_embed_mismatch", "embedding count mismatch", err)
	}

	chunks := make([]domain.DocumentChunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.DocumentChunk{
			ID:         in.ids.NewID(),
			DocumentID: doc.ID,
			TenantID:   doc.TenantID,
			Ordinal:    i,
			Text:       text,
			TokenCount: estimateTokenCount(text),
			Embedding:  embeddings[i],
		}
	}

	if err := in.chunks.SaveChunks(ctx, chunks); err != nil {
		in.fail(ctx, doc, "ingest_persist_failed", "failed to persist document chunks", err)
		return corexerr.Wrap(corexerr.Internal, "ingest_persist_failed", "failed to persist document chunks", err)
	}

	if err := in.statuses.UpdateStatus(ctx, doc.TenantID, doc.ID, domain.DocumentStatusIndexed); err != nil {
		return corexerr.Wrap(corexerr.Internal, "ingest_status_update_failed", "failed to mark document indexed", err)
	}
	return nil
}

func (in *DocumentIngestor) fail(ctx context.Context, doc domain.Document, code, message string, cause error) {
	fields := map[string]interface{}{"document_id": doc.ID, "code": code}
	if cause != nil {
		fields["error"] = cause.Error()
	}
	in.log.Error("", "", message, fields)
	if err := in.statuses.UpdateStatus(ctx, doc.TenantID, doc.ID, domain.DocumentStatusFailed); err != nil {
		in.log.Error("", "", "failed to mark document failed after ingest error", map[string]interface{}{"document_id": doc.ID, "error": err.Error()})
	}
}

// estimateTokenCount mirrors the model router's pre-flight token
// estimate: roughly 4 characters per token.
func estimateTokenCount(text string) int {
	return (len(text) + 3) / 4
}

// chunkText splits text into overlapping windows sized in estimated
// tokens. Splitting happens on whitespace boundaries so a chunk never
// cuts a word in half.
func chunkText(text string, sizeTokens, overlapTokens int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if sizeTokens <= 0 {
		sizeTokens = 512
	}
	if overlapTokens < 0 || overlapTokens >= sizeTokens {
		overlapTokens = 0
	}

	// Roughly 1 word ~= 1.3 tokens in English prose; approximate by
	// treating each word as one token unit for chunk sizing purposes,
	// consistent with the coarse len/4 character estimate used elsewhere.
	stride := sizeTokens - overlapTokens

	var chunks []string
	for start := 0; start < len(words); start += stride {
		end := start + sizeTokens
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
