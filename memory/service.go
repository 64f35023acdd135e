// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// Embedder produces a fixed-dimensionality embedding for a piece of
// text, shared with the retrieval engine.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LightCompleter is the light model tier used to distill facts and
// preferences out of a conversational turn.
type LightCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Repository is the Memory Service's persistence contract, extending
// the generic tenant-scoped repository with a scope-indexed listing
// used by recall and decay.
type Repository interface {
	domain.Repository[domain.Memory, string]
	ListByScope(ctx context.Context, tenantID string, scope domain.MemoryScope, scopeID string) ([]domain.Memory, error)
	ListAll(ctx context.Context, tenantID string) ([]domain.Memory, error)
}

// Config tunes the service's compliance and decay behavior.
type Config struct {
	KAnonymityMin     int           // minimum distinct source principals for scope escalation
	DecayHalfLifeDays float64       // importance halves every this many idle days
	DecayFloor        float64       // importance never decays below this
	RecallTopKDefault int
}

// DefaultConfig mirrors the deployment defaults named in the
// configuration surface: a 5-result default recall window, a 3-source
// k-anonymity floor, and a 30-day decay half-life.
func DefaultConfig() Config {
	return Config{
		KAnonymityMin:     3,
		DecayHalfLifeDays: 30,
		DecayFloor:        0.05,
		RecallTopKDefault: 5,
	}
}

// Service implements recall, store, extract, and decay.
type Service struct {
	repo      Repository
	embedder  Embedder
	completer LightCompleter
	cfg       Config
	now       func() time.Time
}

// NewService constructs a Memory Service. now defaults to time.Now when
// nil, overridable in tests.
func NewService(repo Repository, embedder Embedder, completer LightCompleter, cfg Config, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, embedder: embedder, completer: completer, cfg: cfg, now: now}
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

// Recall returns memories of any kind ranked by the product of
// cosine-similarity-to-query and current importance, bumping the
// access counter of every memory it returns.
func (s *Service) Recall(ctx context.Context, tenantID string, scope domain.MemoryScope, scopeID, query string, topK int) ([]domain.Memory, error) {
	if topK <= 0 {
		topK = s.cfg.RecallTopKDefault
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "embed_failed", "failed to embed recall query", err)
	}

	candidates, err := s.repo.ListByScope(ctx, tenantID, scope, scopeID)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "memory_list_failed", "failed to list memories", err)
	}

	type scored struct {
		mem   domain.Memory
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, m := range candidates {
		if m.ExpiresAt != nil && m.ExpiresAt.Before(s.now()) {
			continue
		}
		sim := cosineSimilarity(queryEmbedding, m.Embedding)
		ranked = append(ranked, scored{mem: m, score: sim * m.Importance})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	results := make([]domain.Memory, 0, len(ranked))
	for _, r := range ranked {
		r.mem.AccessCount++
		r.mem.LastAccessed = s.now()
		if err := s.repo.Update(ctx, r.mem); err != nil {
			return nil, corexerr.Wrap(corexerr.Internal, "memory_touch_failed", "failed to record memory access", err)
		}
		results = append(results, r.mem)
	}
	return results, nil
}

// StoreRequest carries a candidate Memory plus the provenance needed to
// evaluate scope-escalation compliance when Scope is above user level.
type StoreRequest struct {
	Memory                   domain.Memory
	SourceClassification     domain.Classification
	DistinctSourcePrincipals int
	SharingPolicyEnabled     bool
}

// Store inserts a new memory, enforcing scope-escalation compliance for
// anything above user scope: anonymization, k-anonymity, classification
// ceiling, and an explicit tenant-admin sharing policy activation.
// Violations fail with a COMPLIANCE error.
func (s *Service) Store(ctx context.Context, req StoreRequest) error {
	mem := req.Memory

	if mem.Scope != domain.MemoryScopeUser {
		anonymized, _ := Anonymize(mem.Content)
		if ContainsIdentifier(anonymized) {
			return corexerr.Compliancef("memory.anonymization", "memory content for scope %s still carries a direct identifier after anonymization", mem.Scope)
		}
		mem.Content = anonymized

		if req.DistinctSourcePrincipals < s.cfg.KAnonymityMin {
			return corexerr.Compliancef("memory.k_anonymity", "scope %s requires %d distinct source principals, got %d", mem.Scope, s.cfg.KAnonymityMin, req.DistinctSourcePrincipals)
		}

		ceiling, err := classificationCeiling(mem.Scope)
		if err != nil {
			return err
		}
		if req.SourceClassification > ceiling {
			return corexerr.Compliancef("memory.classification_ceiling", "scope %s permits at most classification %d, source is %d", mem.Scope, ceiling, req.SourceClassification)
		}

		if !req.SharingPolicyEnabled {
			return corexerr.Compliancef("memory.sharing_policy", "tenant-admin sharing policy is not active for scope %s", mem.Scope)
		}
	}

	if mem.ID == "" {
		return corexerr.Validationf("id", "memory id is required")
	}
	mem.CreatedAt = s.now()
	mem.LastAccessed = s.now()
	if err := s.repo.Create(ctx, mem); err != nil {
		return corexerr.Wrap(corexerr.Internal, "memory_create_failed", "failed to store memory", err)
	}
	return nil
}

func classificationCeiling(scope domain.MemoryScope) (domain.Classification, error) {
	switch scope {
	case domain.MemoryScopeDepartment:
		return domain.ClassificationII, nil
	case domain.MemoryScopePlant:
		return domain.ClassificationI, nil
	default:
		return 0, corexerr.Internalf("classificationCeiling called for non-escalated scope %s", scope)
	}
}

// Extract invokes the light model tier to distill facts and preferences
// from a conversational turn, returning them tagged with provenance.
// Extract does not itself persist the results; callers pass them to
// Store.
func (s *Service) Extract(ctx context.Context, tenantID, scopeID, conversationID, userTurn, assistantTurn string) ([]domain.Memory, error) {
	prompt := fmt.Sprintf(
		"Extract durable facts or preferences from this exchange as one per line, or reply NONE.\nUser: %s\nAssistant: %s\n",
		userTurn, assistantTurn,
	)
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "extract_failed", "light model completion failed", err)
	}

	var memories []domain.Memory
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "NONE") {
			continue
		}
		embedding, err := s.embedder.Embed(ctx, line)
		if err != nil {
			return nil, corexerr.Wrap(corexerr.Upstream, "embed_failed", "failed to embed extracted memory", err)
		}
		memories = append(memories, domain.Memory{
			Scope:      domain.MemoryScopeUser,
			ScopeID:    scopeID,
			TenantID:   tenantID,
			Kind:       domain.MemoryKindFact,
			Content:    line,
			Provenance: fmt.Sprintf("extract:conversation:%s", conversationID),
			Importance: 0.5,
			Embedding:  embedding,
		})
	}
	return memories, nil
}

// Decay reduces the importance of memories not accessed since
// DecayHalfLifeDays ago, applying an exponential half-life decay
// floored at DecayFloor. It is invoked by the background worker pool,
// never inline with a request.
func (s *Service) Decay(ctx context.Context, tenantID string, now time.Time) (int, error) {
	memories, err := s.repo.ListAll(ctx, tenantID)
	if err != nil {
		return 0, corexerr.Wrap(corexerr.Internal, "memory_list_failed", "failed to list memories for decay", err)
	}

	decayed := 0
	for _, m := range memories {
		idleDays := now.Sub(m.LastAccessed).Hours() / 24
		if idleDays <= 0 {
			continue
		}
		halvings := idleDays / s.cfg.DecayHalfLifeDays
		newImportance := m.Importance * math.Pow(0.5, halvings)
		if newImportance < s.cfg.DecayFloor {
			newImportance = s.cfg.DecayFloor
		}
		if newImportance == m.Importance {
			continue
		}
		m.Importance = newImportance
		if err := s.repo.Update(ctx, m); err != nil {
			return decayed, corexerr.Wrap(corexerr.Internal, "memory_decay_failed", "failed to persist decayed memory", err)
		}
		decayed++
	}
	return decayed, nil
}
