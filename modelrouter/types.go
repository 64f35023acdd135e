// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package modelrouter

import (
	"context"

	"agentcore/platform/domain"
)

// Tier is one of the router's model tiers.
type Tier string

const (
	TierLight    Tier = "light"
	TierStandard Tier = "standard"
	TierHeavy    Tier = "heavy"
)

// tierOrder is the escalation/downgrade ladder, floor first.
var tierOrder = []Tier{TierLight, TierStandard, TierHeavy}

func tierIndex(t Tier) int {
	for i, candidate := range tierOrder {
		if candidate == t {
			return i
		}
	}
	return -1
}

func nextLower(t Tier) (Tier, bool) {
	i := tierIndex(t)
	if i <= 0 {
		return "", false
	}
	return tierOrder[i-1], true
}

func nextHigher(t Tier) (Tier, bool) {
	i := tierIndex(t)
	if i < 0 || i >= len(tierOrder)-1 {
		return "", false
	}
	return tierOrder[i+1], true
}

// Options carries per-call generation parameters.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Response is a completed model call.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	Confidence       float64 // 0-1; low values trigger escalation
	ModelUsed        string
	FinishReason     string
}

// StreamHandler receives one token as it arrives, in order.
type StreamHandler func(token string) error

// Provider is one tier's concrete inference endpoint.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts Options) (Response, error)
	CompleteStream(ctx context.Context, prompt string, opts Options, handler StreamHandler) (Response, error)
	IsHealthy() bool
}

// ComplexityClassifier classifies a prompt's complexity using the light
// tier, mapping the result to a target Tier.
type ComplexityClassifier interface {
	ClassifyComplexity(ctx context.Context, prompt string) (Tier, error)
}

// BudgetLedger is the per-tenant token ledger the budget gate consults
// and updates. Consume must be atomic per call. Remaining reports the
// unconsumed budget floored at zero, plus whether consumption has
// already passed the limit: the floored value alone can't tell
// consumed == limit apart from consumed > limit, and the gate's exact
// boundary behavior depends on that distinction.
type BudgetLedger interface {
	Remaining(ctx context.Context, tenantID string, period domain.BudgetPeriod, tier Tier) (remaining int64, exceeded bool, err error)
	Consume(ctx context.Context, tenantID string, period domain.BudgetPeriod, tier Tier, tokens int64, attribution Attribution) error
}

// Attribution identifies what issued a model call, for the budget
// ledger's per-call record.
type Attribution struct {
	PrincipalID    string
	ConversationID string
	WriteOperationID string
}

// Request is one call into the router.
type Request struct {
	TenantID    string
	Principal   domain.Principal
	Prompt      string
	Options     Options
	Period      domain.BudgetPeriod
	PinnedTier  Tier // operator-only; empty means auto-select
	Attribution Attribution
}

// Trace records the routing decisions made for one request, the same
// shape a composition StageRecord embeds as ModelTier/TokenConsumption.
type Trace struct {
	TierUsed         Tier
	Downgraded       bool
	DowngradeReason  string
	Escalated        bool
	EscalationReason string
}
