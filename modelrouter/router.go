// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package modelrouter

import (
	"context"

	"agentcore/platform/common/usage"
	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/shared/logger"
)

// Config tunes the router's escalation and classification behavior.
type Config struct {
	// ConfidenceFloor is the threshold below which a tier's response is
	// treated as low-confidence and triggers one escalation. See
	// DESIGN.md's Open Question decisions for the chosen default.
	ConfidenceFloor float64
}

// DefaultConfig returns the router's default configuration.
func DefaultConfig() Config {
	return Config{ConfidenceFloor: 0.4}
}

// Router selects a Provider tier per request and enforces the budget
// gate and escalation policy around it.
type Router struct {
	providers  map[Tier]Provider
	ledger     BudgetLedger
	classifier ComplexityClassifier
	cfg        Config
	log        *logger.Logger
	usage      *usage.UsageRecorder
}

// NewRouter constructs a Router. providers must have an entry for every
// tier in the escalation ladder (light, standard, heavy).
func NewRouter(providers map[Tier]Provider, ledger BudgetLedger, classifier ComplexityClassifier, cfg Config) *Router {
	return &Router{providers: providers, ledger: ledger, classifier: classifier, cfg: cfg, log: logger.New("modelrouter")}
}

// WithUsageRecorder attaches the usage metering sink every successful
// model call reports to. In Community builds the recorder is a no-op;
// in Enterprise builds it persists token and cost data per tenant.
func (r *Router) WithUsageRecorder(rec *usage.UsageRecorder) *Router {
	r.usage = rec
	return r
}

// estimateTokens is a deployment-independent token estimate used only
// to size the budget gate's pre-flight check; the ledger is always
// updated from the provider's actual reported usage afterward.
func estimateTokens(prompt string, opts Options) int64 {
	promptTokens := int64(len(prompt) / 4)
	maxTokens := int64(opts.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 512
	}
	return promptTokens + maxTokens
}

// selectInitialTier resolves the operator pin or the light-tier
// complexity classification into a starting tier.
func (r *Router) selectInitialTier(ctx context.Context, req Request) (Tier, error) {
	if req.PinnedTier != "" {
		if req.Principal.Role != domain.RoleOperator && req.Principal.Role != domain.RoleAdmin {
			return "", corexerr.Authzf("only an operator or admin principal may pin a model tier")
		}
		if tierIndex(req.PinnedTier) < 0 {
			return "", corexerr.Validationf("pinned_tier", "unknown tier %q", req.PinnedTier)
		}
		return req.PinnedTier, nil
	}

	if r.classifier == nil {
		return TierLight, nil
	}
	tier, err := r.classifier.ClassifyComplexity(ctx, req.Prompt)
	if err != nil || tierIndex(tier) < 0 {
		return TierLight, nil
	}
	return tier, nil
}

// applyBudgetGate downgrades tier while the estimated cost would
// overshoot the tenant's remaining budget, returning a BUDGET error
// only once the floor tier itself would overshoot. consumed == limit
// is not itself an overshoot: it still lets one more call through,
// which may push consumed past limit; only once the ledger reports
// that the limit has actually been exceeded does the gate downgrade
// regardless of the estimate.
func (r *Router) applyBudgetGate(ctx context.Context, req Request, tier Tier, trace *Trace) (Tier, error) {
	estimate := estimateTokens(req.Prompt, req.Options)
	for {
		remaining, exceeded, err := r.ledger.Remaining(ctx, req.TenantID, req.Period, tier)
		if err != nil {
			return "", corexerr.Wrap(corexerr.Internal, "budget_lookup_failed", "failed to read tenant budget", err)
		}
		if !exceeded && (estimate <= remaining || remaining == 0) {
			return tier, nil
		}
		lower, ok := nextLower(tier)
		if !ok {
			return "", corexerr.Budgetf("tenant %s has insufficient remaining budget even at the light tier", req.TenantID)
		}
		trace.Downgraded = true
		trace.DowngradeReason = "estimated cost exceeds remaining budget at " + string(tier)
		tier = lower
	}
}

// Route performs tier selection, the budget gate, the model call, and
// at most one confidence/transient-failure escalation, recording
// consumption through the ledger on success.
func (r *Router) Route(ctx context.Context, req Request) (Response, Trace, error) {
	tier, err := r.selectInitialTier(ctx, req)
	if err != nil {
		return Response{}, Trace{}, err
	}

	var trace Trace
	tier, err = r.applyBudgetGate(ctx, req, tier, &trace)
	if err != nil {
		return Response{}, trace, err
	}
	trace.TierUsed = tier

	resp, err := r.call(ctx, tier, req)
	if err == nil && resp.Confidence >= r.cfg.ConfidenceFloor {
		if consumeErr := r.consume(ctx, req, tier, resp); consumeErr != nil {
			return Response{}, trace, consumeErr
		}
		return resp, trace, nil
	}

	escalationReason := "low confidence signal"
	if err != nil {
		kind, _ := corexerr.As(err)
		if !kind.Retryable() {
			return Response{}, trace, err
		}
		escalationReason = "transient upstream failure"
	}

	higher, ok := nextHigher(tier)
	if !ok {
		if err != nil {
			return Response{}, trace, err
		}
		if consumeErr := r.consume(ctx, req, tier, resp); consumeErr != nil {
			return Response{}, trace, consumeErr
		}
		return resp, trace, nil
	}

	escalated, escErr := r.applyBudgetGate(ctx, req, higher, &trace)
	if escErr != nil {
		if err != nil {
			return Response{}, trace, err
		}
		return resp, trace, nil
	}
	trace.Escalated = true
	trace.EscalationReason = escalationReason
	trace.TierUsed = escalated

	resp2, err2 := r.call(ctx, escalated, req)
	if err2 != nil {
		if err != nil {
			return Response{}, trace, err2
		}
		return resp, trace, nil
	}
	if consumeErr := r.consume(ctx, req, escalated, resp2); consumeErr != nil {
		return Response{}, trace, consumeErr
	}
	return resp2, trace, nil
}

func (r *Router) call(ctx context.Context, tier Tier, req Request) (Response, error) {
	provider, ok := r.providers[tier]
	if !ok {
		return Response{}, corexerr.Internalf("no provider registered for tier %q", tier)
	}
	resp, err := provider.Complete(ctx, req.Prompt, req.Options)
	if err != nil {
		return Response{}, corexerr.Wrap(corexerr.Upstream, "model_call_failed", "model call failed on tier "+string(tier), err)
	}
	return resp, nil
}

func (r *Router) consume(ctx context.Context, req Request, tier Tier, resp Response) error {
	total := int64(resp.PromptTokens + resp.CompletionTokens)
	if err := r.ledger.Consume(ctx, req.TenantID, req.Period, tier, total, req.Attribution); err != nil {
		return corexerr.Wrap(corexerr.Internal, "budget_consume_failed", "failed to record token consumption", err)
	}
	r.recordUsage(req, tier, resp)
	return nil
}

// recordUsage reports the call to the usage metering sink. It never
// fails the request: the recorder itself swallows its own errors
// (logged internally) exactly as the Enterprise/Community split
// dictates.
func (r *Router) recordUsage(req Request, tier Tier, resp Response) {
	if r.usage == nil {
		return
	}
	_ = r.usage.RecordLLMRequest(usage.LLMRequestEvent{
		OrgID:            req.TenantID,
		ClientID:         req.Attribution.PrincipalID,
		InstanceID:       req.Attribution.ConversationID,
		InstanceType:     "agent_core",
		LLMProvider:      string(tier),
		LLMModel:         resp.ModelUsed,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		TotalTokens:      resp.PromptTokens + resp.CompletionTokens,
		LatencyMs:        0,
	})
}
