// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package reasoning

import (
	"context"

	"agentcore/platform/composition"
	"agentcore/platform/corexerr"
)

// think classifies the turn's intent and complexity, selects a
// composition pattern, and delegates to the configured PlanBuilder for
// the concrete specialist wiring.
func (p *Pipeline) think(ctx context.Context, req Request, obs Observation) (Plan, error) {
	intent := IntentRead
	if p.intentClassifier != nil {
		classified, err := p.intentClassifier.ClassifyIntent(ctx, req.UserTurn)
		if err == nil {
			intent = classified
		}
	}

	pattern := composition.SelectPattern(ctx, p.complexity, req.UserTurn)

	if p.planBuilder == nil {
		return Plan{}, corexerr.Internalf("reasoning pipeline has no plan builder configured")
	}
	plan, err := p.planBuilder.Build(ctx, pattern, intent, obs, req.UserTurn)
	if err != nil {
		return Plan{}, corexerr.Wrap(corexerr.Internal, "plan_build_failed", "failed to build a plan for the selected pattern", err)
	}
	plan.Intent = intent
	plan.Pattern = pattern
	return plan, nil
}
