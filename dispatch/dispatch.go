// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

// Package dispatch implements the Request Dispatcher: the entry point
// every inbound turn passes through before it reaches the reasoning
// pipeline. It builds the per-request context (trace identifier,
// deadline), resolves the classification ceiling a principal's role
// may expose, and runs the Policy Gate ahead of everything else,
// mirroring the orchestrator's processRequestHandler sequence of
// stamping request-scoped context values and evaluating policy before
// routing a request anywhere.
package dispatch

import (
	"context"
	"time"

	"agentcore/platform/domain"
	"agentcore/platform/policy"
	"agentcore/platform/reasoning"
	"agentcore/platform/shared/logger"
)

type contextKey string

const (
	ctxKeyTraceID   contextKey = "trace_id"
	ctxKeyTenantID  contextKey = "tenant_id"
	ctxKeyPrincipal contextKey = "principal"
	ctxKeyScope     contextKey = "scope"
)

// TraceIDFromContext returns the trace identifier a Dispatcher stamped
// onto ctx, if any.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyTraceID).(string)
	return id, ok
}

// ScopeFromContext returns the mandatory tenant filter a Dispatcher
// computed via policy.Gate.Scope for the request carried on ctx.
func ScopeFromContext(ctx context.Context) (domain.Filter, bool) {
	scope, ok := ctx.Value(ctxKeyScope).(domain.Filter)
	return scope, ok
}

// IDGenerator mints trace identifiers for dispatched requests.
type IDGenerator interface {
	NewID() string
}

// TurnRequest is the raw, ingress-supplied shape of one turn, before
// the dispatcher has authorized it or attached request-scoped context.
type TurnRequest struct {
	TenantID         string
	Principal        domain.Principal
	ConversationID   string
	UserTurn         string
	ContextWindow    int
	Feedback         *reasoning.Feedback
	GoalID           string
	RequestedCeiling domain.Classification // optional; caller's requested ceiling for this turn, e.g. from the conversation record
}

// roleCeilings is the default classification ceiling a role may expose
// data up to, absent a more restrictive explicit request. Viewers see
// no confidential material by default; operators and admins may work
// with progressively more sensitive classes.
var roleCeilings = map[domain.Role]domain.Classification{
	domain.RoleViewer:   domain.ClassificationII,
	domain.RoleOperator: domain.ClassificationIII,
	domain.RoleAdmin:    domain.ClassificationIV,
}

func ceilingForRole(role domain.Role) domain.Classification {
	if c, ok := roleCeilings[role]; ok {
		return c
	}
	return domain.ClassificationI
}

// resolveCeiling combines the role's default ceiling with any more
// restrictive ceiling the caller requested; a request may narrow its
// own exposure but never broaden past what its role permits.
func resolveCeiling(role domain.Role, requested domain.Classification) domain.Classification {
	roleCeiling := ceilingForRole(role)
	if requested != 0 && requested < roleCeiling {
		return requested
	}
	return roleCeiling
}

// Dispatcher is the Request Dispatcher component. It holds no
// reasoning-specific state of its own: authorization is delegated to
// the Policy Gate, trace IDs to an IDGenerator, and the turn itself is
// simply reshaped into a reasoning.Request once both checks pass.
type Dispatcher struct {
	gate    *policy.Gate
	ids     IDGenerator
	timeout time.Duration
	log     *logger.Logger
}

// New constructs a Dispatcher. timeout bounds how long the dispatched
// context remains valid; pass 0 to dispatch with no deadline.
func New(gate *policy.Gate, ids IDGenerator, timeout time.Duration) *Dispatcher {
	return &Dispatcher{gate: gate, ids: ids, timeout: timeout, log: logger.New("dispatch")}
}

// Dispatch authorizes req against the Policy Gate, stamps the returned
// context with a trace identifier and the tenant/principal scope, and
// attaches the configured deadline. The caller must invoke the
// returned cancel func once the dispatched request's work is done.
//
// A denied Check returns the corexerr.Authz error the Gate produced,
// unchanged, so the caller can surface it the same way any other
// policy-denied response is surfaced; no reasoning.Request is returned
// in that case.
func (d *Dispatcher) Dispatch(ctx context.Context, req TurnRequest) (context.Context, context.CancelFunc, reasoning.Request, error) {
	traceID := d.ids.NewID()
	ctx = context.WithValue(ctx, ctxKeyTraceID, traceID)
	ctx = context.WithValue(ctx, ctxKeyTenantID, req.TenantID)
	ctx = context.WithValue(ctx, ctxKeyPrincipal, req.Principal)

	cancel := func() {}
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
	}

	resource := policy.ResourceRef{Kind: "conversation", TenantID: req.TenantID, Domains: req.Principal.Domains}
	if _, err := d.gate.Check(ctx, req.Principal, "read", resource); err != nil {
		cancel()
		return ctx, func() {}, reasoning.Request{}, err
	}

	// Scope is the mandatory tenant filter every subsequent repository
	// call this turn makes must honor; stamp it onto the context so a
	// downstream collaborator can assert against it rather than trust
	// req.TenantID a second time.
	ctx = context.WithValue(ctx, ctxKeyScope, d.gate.Scope(req.Principal))

	ceiling := resolveCeiling(req.Principal.Role, req.RequestedCeiling)

	d.log.Debug(req.TenantID, traceID, "dispatched turn", map[string]interface{}{
		"principal_id": req.Principal.ID,
		"role":         string(req.Principal.Role),
		"ceiling":      int(ceiling),
	})

	return ctx, cancel, reasoning.Request{
		TenantID:       req.TenantID,
		Principal:      req.Principal,
		ConversationID: req.ConversationID,
		UserTurn:       req.UserTurn,
		ContextWindow:  req.ContextWindow,
		Feedback:       req.Feedback,
		GoalID:         req.GoalID,
		Ceiling:        ceiling,
	}, nil
}
