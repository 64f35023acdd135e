// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package writegateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/policy"
	"agentcore/platform/shared/logger"
)

// Gateway drives the WriteOperation state machine. Every transition is
// persisted before it is acted on and audited before it is returned to
// the caller.
type Gateway struct {
	repo     Repository
	checker  ApprovalChecker
	executor Executor
	notifier Notifier
	tenant   TenantPolicy
	audit    AuditSink
	cfg      Config
	now      func() time.Time
	newID    func() string
	log      *logger.Logger
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, domain.AuditEntry) error { return nil }

// New constructs a Gateway. notifier and tenant may be nil: with no
// notifier, escalations are silently skipped; with no tenant policy
// provider, low-risk auto-approval never triggers.
func New(repo Repository, checker ApprovalChecker, executor Executor, notifier Notifier, tenant TenantPolicy, audit AuditSink, cfg Config) *Gateway {
	if audit == nil {
		audit = nopAudit{}
	}
	return &Gateway{
		repo:     repo,
		checker:  checker,
		executor: executor,
		notifier: notifier,
		tenant:   tenant,
		audit:    audit,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
		log:      logger.New("writegateway"),
	}
}

// Propose records a new WriteOperation in PROPOSED state, then
// auto-approves it immediately when its risk is low and the tenant has
// an active auto-approval policy — an audit entry is still produced
// either way.
func (g *Gateway) Propose(ctx context.Context, op domain.WriteOperation) (domain.WriteOperation, error) {
	if op.TenantID == "" || op.Connector == "" || op.Operation == "" {
		return domain.WriteOperation{}, corexerr.Validationf("operation", "tenant, connector, and operation are required to propose a write")
	}
	if op.Risk == "" {
		op.Risk = domain.RiskMedium
	}

	op.ID = g.newID()
	op.State = domain.WriteStateProposed
	op.RequestedAt = g.now()
	if op.DeadlineAt.IsZero() {
		op.DeadlineAt = op.RequestedAt.Add(g.cfg.DefaultApprovalTimeout)
	}

	if err := g.repo.Create(ctx, op); err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Internal, "write_create_failed", "failed to persist proposed write operation", err)
	}
	g.recordAudit(ctx, op, "write.proposed", "")

	autoApprove, err := g.autoApproves(ctx, op)
	if err != nil {
		g.log.Warn(op.RequestingPrincipal, op.ID, "auto-approval policy lookup failed", map[string]interface{}{"error": err.Error()})
	}
	if autoApprove {
		return g.transitionApproved(ctx, op, "system:auto-approval", "low risk operation auto-approved by tenant policy")
	}

	if g.notifier != nil {
		if err := g.notifier.NotifyApprovalRequired(ctx, domain.FromWriteOperation(op)); err != nil {
			g.log.Warn(op.RequestingPrincipal, op.ID, "failed to deliver approval escalation", map[string]interface{}{"error": err.Error()})
		}
	}
	return op, nil
}

func (g *Gateway) autoApproves(ctx context.Context, op domain.WriteOperation) (bool, error) {
	if op.Risk != domain.RiskLow || g.tenant == nil {
		return false, nil
	}
	return g.tenant.AutoApproveLowRisk(ctx, op.TenantID)
}

// Approve transitions a PROPOSED operation to APPROVED, then executes
// it immediately. The approving principal must hold write_operation
// approve permission and, for high or critical risk, must be
// MFA-verified.
func (g *Gateway) Approve(ctx context.Context, principal domain.Principal, operationID, reason string) (domain.WriteOperation, error) {
	op, err := g.loadProposed(ctx, principal.TenantID, operationID)
	if err != nil {
		return domain.WriteOperation{}, err
	}
	if err := g.checkApprovalPermission(ctx, principal, op); err != nil {
		return domain.WriteOperation{}, err
	}
	approved, err := g.transitionApproved(ctx, op, principal.ID, reason)
	if err != nil {
		return domain.WriteOperation{}, err
	}
	return approved, nil
}

func (g *Gateway) checkApprovalPermission(ctx context.Context, principal domain.Principal, op domain.WriteOperation) error {
	if g.checker != nil {
		decision, err := g.checker.Check(ctx, principal, "approve", policy.ResourceRef{Kind: "write_operation", TenantID: op.TenantID})
		if err != nil {
			return err
		}
		if !decision.Allow {
			return corexerr.Authzf("principal %s lacks write_operation approve permission: %s", principal.ID, decision.Reason)
		}
	}
	if (op.Risk == domain.RiskHigh || op.Risk == domain.RiskCritical) && !principal.MFAVerified {
		return corexerr.Authzf("approving a %s risk operation requires an MFA-verified principal", op.Risk)
	}
	return nil
}

// transitionApproved persists the APPROVED state and immediately
// triggers execution, since the state diagram has no independent
// manual "execute" step — execution is automatic on approval.
func (g *Gateway) transitionApproved(ctx context.Context, op domain.WriteOperation, approver, reason string) (domain.WriteOperation, error) {
	op.State = domain.WriteStateApproved
	op.ApproverPrincipal = approver
	op.ApprovalReason = reason
	if err := g.repo.Update(ctx, op); err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Internal, "write_update_failed", "failed to persist approval", err)
	}
	g.recordAudit(ctx, op, "write.approved", reason)

	executed, execErr := g.execute(ctx, op)
	if execErr != nil {
		return executed, execErr
	}
	return executed, nil
}

// Reject transitions a PROPOSED operation to REJECTED. The same
// approval permission governs reject as approve.
func (g *Gateway) Reject(ctx context.Context, principal domain.Principal, operationID, reason string) (domain.WriteOperation, error) {
	op, err := g.loadProposed(ctx, principal.TenantID, operationID)
	if err != nil {
		return domain.WriteOperation{}, err
	}
	if err := g.checkApprovalPermission(ctx, principal, op); err != nil {
		return domain.WriteOperation{}, err
	}

	op.State = domain.WriteStateRejected
	op.ApproverPrincipal = principal.ID
	op.ApprovalReason = reason
	if err := g.repo.Update(ctx, op); err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Internal, "write_update_failed", "failed to persist rejection", err)
	}
	g.recordAudit(ctx, op, "write.rejected", reason)
	return op, nil
}

func (g *Gateway) loadProposed(ctx context.Context, tenantID, operationID string) (domain.WriteOperation, error) {
	op, err := g.repo.Get(ctx, tenantID, operationID)
	if err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Internal, "write_lookup_failed", "failed to load write operation", err)
	}
	if op.State != domain.WriteStateProposed {
		return domain.WriteOperation{}, corexerr.New(corexerr.Concurrency, "write_not_proposed", "write operation "+operationID+" is not in PROPOSED state")
	}
	return op, nil
}

// execute runs the operation through the connector proxy exactly once.
// Callers only reach here from transitionApproved, which always
// persists APPROVED first, so a crash between approval and execution
// leaves the operation resumable rather than silently re-executed.
func (g *Gateway) execute(ctx context.Context, op domain.WriteOperation) (domain.WriteOperation, error) {
	if op.State != domain.WriteStateApproved {
		return op, corexerr.New(corexerr.Concurrency, "write_not_approved", "write operation "+op.ID+" is not in APPROVED state")
	}

	result, rollbackHandle, err := g.executor.Execute(ctx, op)
	if err != nil {
		op.State = domain.WriteStateFailed
		if updateErr := g.repo.Update(ctx, op); updateErr != nil {
			g.log.Error(op.RequestingPrincipal, op.ID, "failed to persist execution failure", map[string]interface{}{"error": updateErr.Error()})
		}
		g.recordAudit(ctx, op, "write.failed", err.Error())
		return op, corexerr.Wrap(corexerr.Upstream, "write_execute_failed", "connector execution failed", err)
	}

	op.State = domain.WriteStateExecuted
	op.ResultPayload = result
	op.RollbackHandle = rollbackHandle
	if err := g.repo.Update(ctx, op); err != nil {
		return op, corexerr.Wrap(corexerr.Internal, "write_update_failed", "failed to persist execution result", err)
	}
	g.recordAudit(ctx, op, "write.executed", "")
	return op, nil
}

// Rollback reverses an EXECUTED operation that registered a rollback
// handle.
func (g *Gateway) Rollback(ctx context.Context, tenantID, operationID string) (domain.WriteOperation, error) {
	op, err := g.repo.Get(ctx, tenantID, operationID)
	if err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Internal, "write_lookup_failed", "failed to load write operation", err)
	}
	if op.State != domain.WriteStateExecuted || op.RollbackHandle == "" {
		return domain.WriteOperation{}, corexerr.New(corexerr.Validation, "write_not_rollbackable", "write operation "+operationID+" has no rollback handle to use")
	}
	if err := g.executor.Rollback(ctx, op.RollbackHandle); err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Upstream, "write_rollback_failed", "connector rollback failed", err)
	}
	op.State = domain.WriteStateRolledBack
	if err := g.repo.Update(ctx, op); err != nil {
		return domain.WriteOperation{}, corexerr.Wrap(corexerr.Internal, "write_update_failed", "failed to persist rollback", err)
	}
	g.recordAudit(ctx, op, "write.rolled_back", "")
	return op, nil
}

// SweepTimeouts transitions every PROPOSED operation whose deadline has
// passed to TIMED_OUT. It is invoked periodically by the background
// worker pool, never inline with a request.
func (g *Gateway) SweepTimeouts(ctx context.Context) (int, error) {
	expired, err := g.repo.ListExpired(ctx, g.now())
	if err != nil {
		return 0, corexerr.Wrap(corexerr.Internal, "write_expired_list_failed", "failed to list expired write operations", err)
	}

	swept := 0
	for _, op := range expired {
		op.State = domain.WriteStateTimedOut
		if err := g.repo.Update(ctx, op); err != nil {
			g.log.Error(op.RequestingPrincipal, op.ID, "failed to persist timeout", map[string]interface{}{"error": err.Error()})
			continue
		}
		g.recordAudit(ctx, op, "write.timed_out", "")
		if g.notifier != nil {
			if err := g.notifier.NotifyTimeout(ctx, domain.FromWriteOperation(op)); err != nil {
				g.log.Warn(op.RequestingPrincipal, op.ID, "failed to deliver timeout escalation", map[string]interface{}{"error": err.Error()})
			}
		}
		swept++
	}
	return swept, nil
}

func (g *Gateway) recordAudit(ctx context.Context, op domain.WriteOperation, eventKind, detail string) {
	_ = g.audit.Record(ctx, domain.AuditEntry{
		TenantID:     op.TenantID,
		PrincipalID:  op.RequestingPrincipal,
		EventKind:    eventKind,
		ResourceKind: "write_operation",
		ResourceID:   op.ID,
		ResultStatus: string(op.State),
		CreatedAt:    g.now(),
		Metadata: map[string]interface{}{
			"connector": op.Connector,
			"operation": op.Operation,
			"risk":      op.Risk,
			"detail":    detail,
		},
	})
}
