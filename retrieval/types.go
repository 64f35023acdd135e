// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package retrieval

import (
	"context"
	"time"

	"agentcore/platform/domain"
)

// TagMode controls how MetadataFilter.Tags are combined.
type TagMode string

const (
	TagModeAny TagMode = "any"
	TagModeAll TagMode = "all"
)

// MetadataFilter narrows candidate chunks before fusion.
type MetadataFilter struct {
	DocumentTypes          []string
	ClassificationCeiling  domain.Classification
	DateFrom, DateTo       *time.Time
	Tags                   []string
	TagMode                TagMode
	Fields                 map[string]interface{}
}

// Matches reports whether a chunk's document metadata satisfies the
// filter. Classification, date range, and tag predicates are combined
// with logical AND; tags themselves combine per TagMode.
func (f MetadataFilter) Matches(doc domain.Document, tags []string) bool {
	if f.ClassificationCeiling != 0 && doc.Classification > f.ClassificationCeiling {
		return false
	}
	if len(f.DocumentTypes) > 0 && !contains(f.DocumentTypes, doc.MimeType) {
		return false
	}
	if f.DateFrom != nil && doc.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && doc.CreatedAt.After(*f.DateTo) {
		return false
	}
	if len(f.Tags) == 0 {
		return true
	}
	if f.TagMode == TagModeAll {
		for _, want := range f.Tags {
			if !contains(tags, want) {
				return false
			}
		}
		return true
	}
	for _, want := range f.Tags {
		if contains(tags, want) {
			return true
		}
	}
	return false
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

// RankedChunk is one candidate returned by a single retrieval strategy,
// carrying that strategy's own rank (1-based, best first).
type RankedChunk struct {
	Chunk domain.DocumentChunk
	Rank  int
}

// Result is one fused, ranked retrieval hit.
type Result struct {
	Chunk      domain.DocumentChunk
	Score      float64
	Position   int
	DocumentID string
}

// Embedder produces a fixed-dimensionality embedding for a query,
// shared with the memory service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SemanticSearcher returns nearest neighbors by cosine distance, scoped
// to tenant and classification ceiling.
type SemanticSearcher interface {
	Search(ctx context.Context, tenantID string, queryEmbedding []float32, limit int, filter MetadataFilter) ([]RankedChunk, error)
}

// LexicalSearcher returns full-text matches over chunk content.
type LexicalSearcher interface {
	Search(ctx context.Context, tenantID string, query string, limit int, filter MetadataFilter) ([]RankedChunk, error)
}

// Reranker scores each (query, chunk) pair on a 0-10 scale using the
// model router's standard tier.
type Reranker interface {
	Score(ctx context.Context, query string, chunks []domain.DocumentChunk) ([]float64, error)
}

// Config tunes the fusion, reranking, and feedback-weighting stages.
type Config struct {
	RRFSmoothing          int     // k in the RRF formula, default 60
	SemanticWeight        float64 // w_sem, default 0.5
	LexicalWeight         float64 // w_lex, default 0.5
	RerankTopN            int     // default 20
	FinalK                int     // default 5
	FeedbackSensitivity   float64 // multiplier slope, see DESIGN.md open question #1
}

// DefaultConfig returns the deployment defaults named in §4.3.
func DefaultConfig() Config {
	return Config{
		RRFSmoothing:        60,
		SemanticWeight:      0.5,
		LexicalWeight:       0.5,
		RerankTopN:          20,
		FinalK:              5,
		FeedbackSensitivity: 0.1,
	}
}
