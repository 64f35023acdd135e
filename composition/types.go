// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package composition

import (
	"context"
	"time"
)

// Input is the shared context a specialist invocation receives. Context
// carries pattern-specific additions: a pipeline stage's predecessor
// output, a gate's verifier feedback, a TDD loop's test outcome.
type Input struct {
	TenantID string
	Query    string
	Context  map[string]interface{}
}

// WithContext returns a copy of Input with key set in Context.
func (in Input) WithContext(key string, value interface{}) Input {
	next := Input{TenantID: in.TenantID, Query: in.Query, Context: make(map[string]interface{}, len(in.Context)+1)}
	for k, v := range in.Context {
		next.Context[k] = v
	}
	next.Context[key] = value
	return next
}

// Output is what a specialist invocation produces.
type Output struct {
	Content        string
	TokenCount     int
	ModelTier      string
	RollbackHandle string
	Metadata       map[string]interface{}
}

// Specialist is a single named reasoning unit the scheduler can invoke,
// directly or as a stage of a composition pattern.
type Specialist interface {
	ID() string
	Invoke(ctx context.Context, input Input) (Output, error)
}

// StageRecord is the structured history entry every pattern produces
// per stage it runs.
type StageRecord struct {
	SpecialistID   string
	StartedAt      time.Time
	EndedAt        time.Time
	ModelTier      string
	TokenCount     int
	Output         Output
	Err            string
	RollbackHandle string
}

func runStage(ctx context.Context, s Specialist, input Input) (Output, StageRecord) {
	rec := StageRecord{SpecialistID: s.ID(), StartedAt: time.Now().UTC()}
	out, err := s.Invoke(ctx, input)
	rec.EndedAt = time.Now().UTC()
	rec.ModelTier = out.ModelTier
	rec.TokenCount = out.TokenCount
	rec.Output = out
	rec.RollbackHandle = out.RollbackHandle
	if err != nil {
		rec.Err = err.Error()
	}
	return out, rec
}

// Verdict is a Gate verifier's pass/fail decision.
type Verdict struct {
	Pass   bool
	Reason string
}

// Verifier decides whether a Gate producer's output is acceptable.
type Verifier interface {
	Verify(ctx context.Context, output Output) (Verdict, error)
}

// TestOutcome is a TDD-loop tester's authoritative pass/fail result.
type TestOutcome struct {
	Pass    bool
	Details string
}

// Tester runs the authoritative check in a TDD loop.
type Tester interface {
	Test(ctx context.Context, output Output) (TestOutcome, error)
}
