// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"

	"agentcore/platform/composition"
	"agentcore/platform/domain"
	"agentcore/platform/modelrouter"
	"agentcore/platform/reasoning"
)

// RouterSpecialist adapts the model router to composition.Specialist,
// letting any composition pattern invoke it as a reasoning stage. id
// names the specialist for StageRecord/audit purposes; period and
// attribution default to what a direct chat turn needs.
type RouterSpecialist struct {
	id       string
	router   *modelrouter.Router
	period   domain.BudgetPeriod
	pinTier  modelrouter.Tier
}

// NewRouterSpecialist constructs a RouterSpecialist. pinTier may be
// empty to let the router auto-select via its complexity classifier.
func NewRouterSpecialist(id string, router *modelrouter.Router, pinTier modelrouter.Tier) *RouterSpecialist {
	return &RouterSpecialist{id: id, router: router, period: domain.BudgetPeriodDaily, pinTier: pinTier}
}

func (s *RouterSpecialist) ID() string { return s.id }

// Invoke implements composition.Specialist.
func (s *RouterSpecialist) Invoke(ctx context.Context, input composition.Input) (composition.Output, error) {
	principal, _ := input.Context["principal"].(domain.Principal)
	resp, trace, err := s.router.Route(ctx, modelrouter.Request{
		TenantID:   input.TenantID,
		Principal:  principal,
		Prompt:     input.Query,
		Period:     s.period,
		PinnedTier: s.pinTier,
	})
	if err != nil {
		return composition.Output{}, err
	}
	return composition.Output{
		Content:    resp.Content,
		TokenCount: resp.PromptTokens + resp.CompletionTokens,
		ModelTier:  string(trace.TierUsed),
	}, nil
}

// SingleSpecialistPlanBuilder is a v1 reasoning.PlanBuilder: every turn
// resolves to a direct invocation of one configured specialist,
// regardless of the pattern SelectPattern would otherwise choose. A
// deployment that wants pipeline, fan-out, or gate composition supplies
// its own PlanBuilder backed by a specialist catalog; the example pack
// carries no such catalog to ground one on, so the core ships the
// simplest PlanBuilder that is still fully functional end to end.
type SingleSpecialistPlanBuilder struct {
	specialist composition.Specialist
}

// NewSingleSpecialistPlanBuilder constructs a SingleSpecialistPlanBuilder.
func NewSingleSpecialistPlanBuilder(specialist composition.Specialist) *SingleSpecialistPlanBuilder {
	return &SingleSpecialistPlanBuilder{specialist: specialist}
}

// Build implements reasoning.PlanBuilder.
func (b *SingleSpecialistPlanBuilder) Build(ctx context.Context, pattern composition.Pattern, intent reasoning.Intent, observation reasoning.Observation, userTurn string) (reasoning.Plan, error) {
	return reasoning.Plan{
		Intent:     intent,
		Pattern:    composition.PatternDirect,
		Specialist: b.specialist,
	}, nil
}
