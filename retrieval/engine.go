// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package retrieval

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/shared/logger"
)

// FeedbackProvider resolves a document's running feedback score, used
// to bound-adjust final chunk scores.
type FeedbackProvider interface {
	FeedbackScore(ctx context.Context, documentID string) (int64, error)
}

// Engine runs the hybrid search → RRF → rerank → feedback-weighting
// pipeline described in the retrieval engine's design.
type Engine struct {
	embedder Embedder
	semantic SemanticSearcher
	lexical  LexicalSearcher
	reranker Reranker
	feedback FeedbackProvider
	cfg      Config
	log      *logger.Logger
}

// NewEngine constructs a retrieval Engine. reranker and feedback may be
// nil to run without cross-encoder reranking or feedback weighting.
func NewEngine(embedder Embedder, semantic SemanticSearcher, lexical LexicalSearcher, reranker Reranker, feedback FeedbackProvider, cfg Config) *Engine {
	return &Engine{
		embedder: embedder,
		semantic: semantic,
		lexical:  lexical,
		reranker: reranker,
		feedback: feedback,
		cfg:      cfg,
		log:      logger.New("retrieval"),
	}
}

// Search executes the full pipeline and returns up to cfg.FinalK
// results plus any non-fatal degradation warnings. Embedding failure is
// the only fatal error; a zero-result set is returned without error.
func (e *Engine) Search(ctx context.Context, tenantID, clientID, requestID, query string, filter MetadataFilter) ([]Result, []string, error) {
	if e.cfg.FinalK <= 0 {
		return []Result{}, nil, nil
	}

	var warnings []string

	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, corexerr.Wrap(corexerr.Upstream, "embed_failed", "failed to embed retrieval query", err)
	}

	candidateLimit := e.cfg.RerankTopN
	if candidateLimit <= 0 {
		candidateLimit = 20
	}

	var semanticResults, lexicalResults []RankedChunk
	g := new(errgroup.Group)
	g.Go(func() error {
		res, err := e.semantic.Search(ctx, tenantID, queryEmbedding, candidateLimit, filter)
		if err != nil {
			return corexerr.Wrap(corexerr.Upstream, "semantic_search_failed", "semantic search failed", err)
		}
		semanticResults = res
		return nil
	})
	g.Go(func() error {
		res, err := e.lexical.Search(ctx, tenantID, query, candidateLimit, filter)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("lexical search degraded: %v", err))
			return nil
		}
		lexicalResults = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, warnings, err
	}

	fused := fuseRRF(semanticResults, lexicalResults, e.cfg)
	if len(fused) == 0 {
		return nil, warnings, nil
	}

	if len(fused) > candidateLimit {
		fused = fused[:candidateLimit]
	}

	if e.reranker != nil {
		reranked, rerankErr := e.rerank(ctx, query, fused)
		if rerankErr != nil {
			warnings = append(warnings, fmt.Sprintf("reranker degraded to RRF order: %v", rerankErr))
		} else {
			fused = reranked
		}
	}

	if e.feedback != nil {
		for i := range fused {
			fs, ferr := e.feedback.FeedbackScore(ctx, fused[i].Chunk.DocumentID)
			if ferr != nil {
				warnings = append(warnings, fmt.Sprintf("feedback lookup degraded for document %s: %v", fused[i].Chunk.DocumentID, ferr))
				continue
			}
			fused[i].Score *= feedbackMultiplier(fs, e.cfg.FeedbackSensitivity)
		}
		sort.Slice(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	}

	if len(fused) > e.cfg.FinalK {
		fused = fused[:e.cfg.FinalK]
	}

	e.log.Debug(clientID, requestID, "retrieval search completed", map[string]interface{}{
		"tenant_id": tenantID,
		"results":   len(fused),
		"warnings":  len(warnings),
	})

	for i := range fused {
		fused[i].Position = i + 1
	}
	return fused, warnings, nil
}

func (e *Engine) rerank(ctx context.Context, query string, candidates []Result) ([]Result, error) {
	chunks := make([]domain.DocumentChunk, len(candidates))
	for i, c := range candidates {
		chunks[i] = c.Chunk
	}
	scores, err := e.reranker.Score(ctx, query, chunks)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("reranker returned %d scores for %d candidates", len(scores), len(candidates))
	}
	out := make([]Result, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Score = scores[i] / 10.0 // normalize 0-10 to 0-1
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// feedbackMultiplier maps a running feedback score onto a bounded
// multiplicative adjustment. See DESIGN.md's Open Question decisions
// for the chosen formula.
func feedbackMultiplier(feedbackScore int64, sensitivity float64) float64 {
	m := 1 + float64(feedbackScore)*sensitivity
	if m < 0.5 {
		return 0.5
	}
	if m > 1.5 {
		return 1.5
	}
	return m
}

// fuseRRF combines two ranked lists via reciprocal rank fusion:
// score(chunk) = w_sem / (k + rank_sem) + w_lex / (k + rank_lex).
// A chunk present in only one list is scored using that list's term
// alone.
func fuseRRF(semantic, lexical []RankedChunk, cfg Config) []Result {
	k := float64(cfg.RRFSmoothing)
	if k <= 0 {
		k = 60
	}
	wSem, wLex := cfg.SemanticWeight, cfg.LexicalWeight
	if wSem == 0 && wLex == 0 {
		wSem, wLex = 0.5, 0.5
	}

	scores := map[string]float64{}
	chunksByID := map[string]domain.DocumentChunk{}

	for _, rc := range semantic {
		scores[rc.Chunk.ID] += wSem / (k + float64(rc.Rank))
		chunksByID[rc.Chunk.ID] = rc.Chunk
	}
	for _, rc := range lexical {
		scores[rc.Chunk.ID] += wLex / (k + float64(rc.Rank))
		chunksByID[rc.Chunk.ID] = rc.Chunk
	}

	results := make([]Result, 0, len(scores))
	for id, score := range scores {
		chunk := chunksByID[id]
		results = append(results, Result{Chunk: chunk, Score: score, DocumentID: chunk.DocumentID})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	return results
}
