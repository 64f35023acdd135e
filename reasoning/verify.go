// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package reasoning

import (
	"context"
	"fmt"

	"agentcore/platform/composition"
	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// Write-intent specialists communicate the write they want performed
// through these well-known Output.Metadata keys rather than through a
// dedicated return type, so the same Specialist interface serves both
// read and write turns.
const (
	writeMetaConnector  = "connector"
	writeMetaOperation  = "operation"
	writeMetaParameters = "parameters"
	writeMetaRisk       = "risk"
	writeMetaRationale  = "rationale"
)

// verify executes the plan through the selected composition pattern. A
// write-intent plan's output is not finalized directly: it is turned
// into a WriteOperation and hand off to the write gateway, which owns
// the approval state machine from here.
func (p *Pipeline) verify(ctx context.Context, req Request, plan Plan) (Result, *domain.WriteOperation, error) {
	input := composition.Input{TenantID: req.TenantID, Query: req.UserTurn, Context: map[string]interface{}{}}

	out, history, err := p.runPattern(ctx, plan, input)
	if err != nil {
		return Result{}, nil, err
	}

	if plan.Intent != IntentWrite {
		return Result{Output: out, History: history}, nil, nil
	}

	op, err := writeOperationFromOutput(req, out)
	if err != nil {
		return Result{}, nil, err
	}
	if p.writeProposer == nil {
		return Result{}, nil, corexerr.Internalf("plan carries write intent but no write gateway is configured")
	}
	proposed, err := p.writeProposer.Propose(ctx, op)
	if err != nil {
		return Result{}, nil, corexerr.Wrap(corexerr.Internal, "write_propose_failed", "failed to propose write operation", err)
	}
	return Result{Output: out, History: history}, &proposed, nil
}

func (p *Pipeline) runPattern(ctx context.Context, plan Plan, input composition.Input) (composition.Output, []composition.StageRecord, error) {
	switch plan.Pattern {
	case composition.PatternPipeline:
		return composition.Pipeline(ctx, plan.Pipeline, input)
	case composition.PatternFanOut:
		return composition.FanOut(ctx, plan.FanOut, plan.Synthesis, input)
	case composition.PatternGate:
		if plan.Gate == nil {
			return composition.Output{}, nil, corexerr.Internalf("gate pattern selected without a gate plan")
		}
		return composition.Gate(ctx, plan.Gate.Producer, plan.Gate.Verifier, plan.Gate.MaxRetries, input)
	default:
		if plan.Specialist == nil {
			return composition.Output{}, nil, corexerr.Internalf("direct pattern selected without a specialist")
		}
		out, err := plan.Specialist.Invoke(ctx, input)
		if err != nil {
			return composition.Output{}, nil, corexerr.Wrap(corexerr.Internal, "specialist_invoke_failed", "specialist invocation failed", err)
		}
		return out, []composition.StageRecord{{SpecialistID: plan.Specialist.ID(), Output: out}}, nil
	}
}

func writeOperationFromOutput(req Request, out composition.Output) (domain.WriteOperation, error) {
	connector, _ := out.Metadata[writeMetaConnector].(string)
	operation, _ := out.Metadata[writeMetaOperation].(string)
	if connector == "" || operation == "" {
		return domain.WriteOperation{}, corexerr.Internalf("write-intent specialist did not provide a connector and operation")
	}
	params, _ := out.Metadata[writeMetaParameters].(map[string]interface{})
	risk, _ := out.Metadata[writeMetaRisk].(domain.RiskLevel)
	if risk == "" {
		risk = domain.RiskMedium
	}
	rationale, _ := out.Metadata[writeMetaRationale].(string)
	if rationale == "" {
		rationale = fmt.Sprintf("proposed from conversation %s", req.ConversationID)
	}

	return domain.WriteOperation{
		TenantID:            req.TenantID,
		RequestingPrincipal: req.Principal.ID,
		Connector:           connector,
		Operation:           operation,
		Parameters:          params,
		Risk:                risk,
		Rationale:           rationale,
		State:               domain.WriteStateProposed,
	}, nil
}
