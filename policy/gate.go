// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// ResourceRef identifies the resource an operation acts on, for the
// purpose of a single Check call.
type ResourceRef struct {
	Kind     string // conversation, document, write_operation, connector, ...
	TenantID string
	Domains  []string // information domains this resource touches
}

// Decision is the outcome of a single Check call.
type Decision struct {
	Allow  bool
	Reason string
	Hint   string // non-empty when a DBAC check degraded gracefully
}

// AuditSink receives policy.denied entries emitted by the gate before a
// deny is returned to the caller.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// nopAuditSink is used when a Gate is constructed without a sink, so
// Check never needs a nil check on the hot path.
type nopAuditSink struct{}

func (nopAuditSink) Record(context.Context, domain.AuditEntry) error { return nil }

// Gate is the Policy Gate: an in-memory, synchronous authorization
// decision point. It holds no database handle — every permission table
// it evaluates against is loaded at construction time.
type Gate struct {
	// permissions maps a role to the set of permission patterns it
	// holds, in "resource_kind:operation" form with "*" wildcards,
	// following the same pattern as a connector permission string
	// (e.g. "document:*", "write_operation:approve", "*").
	permissions map[domain.Role][]string
	audit       AuditSink
}

// NewGate constructs a Gate from a static role → permission-pattern
// table. Pass a nil audit sink to disable policy.denied emission (tests
// commonly do this).
func NewGate(permissions map[domain.Role][]string, audit AuditSink) *Gate {
	if audit == nil {
		audit = nopAuditSink{}
	}
	return &Gate{permissions: permissions, audit: audit}
}

// DefaultPermissions returns the built-in role→permission table: admins
// hold every permission, operators hold read/write on conversational and
// document resources plus write-operation proposal, viewers hold
// read-only access.
func DefaultPermissions() map[domain.Role][]string {
	return map[domain.Role][]string{
		domain.RoleAdmin: {"*"},
		domain.RoleOperator: {
			"conversation:*",
			"message:*",
			"document:read",
			"memory:*",
			"goal:*",
			"write_operation:propose",
			"write_operation:read",
			"connector:execute",
		},
		domain.RoleViewer: {
			"conversation:read",
			"message:read",
			"document:read",
			"memory:read",
			"goal:read",
			"write_operation:read",
		},
	}
}

func requiredPermission(resourceKind, operation string) string {
	return fmt.Sprintf("%s:%s", resourceKind, operation)
}

func hasPermission(patterns []string, required string) bool {
	parts := strings.SplitN(required, ":", 2)
	resourceWildcard := required
	if len(parts) == 2 {
		resourceWildcard = parts[0] + ":*"
	}
	for _, p := range patterns {
		if p == required || p == resourceWildcard || p == "*" {
			return true
		}
	}
	return false
}

// subsetOf reports whether every element of domains is present in
// principalDomains.
func subsetOf(domains, principalDomains []string) bool {
	allowed := make(map[string]struct{}, len(principalDomains))
	for _, d := range principalDomains {
		allowed[d] = struct{}{}
	}
	for _, d := range domains {
		if _, ok := allowed[d]; !ok {
			return false
		}
	}
	return true
}

// Check evaluates the four independent decisions described in the
// policy gate's contract: authentication validity, role permission,
// tenant match, and domain-based access control. It performs no I/O; on
// deny it writes a policy.denied AuditEntry through the configured
// AuditSink before returning a corexerr.Authz error.
func (g *Gate) Check(ctx context.Context, principal domain.Principal, operation string, resource ResourceRef) (Decision, error) {
	if principal.ID == "" || principal.TenantID == "" {
		return g.deny(ctx, principal, operation, resource, "principal is not authenticated")
	}

	if resource.TenantID != "" && resource.TenantID != principal.TenantID {
		return g.deny(ctx, principal, operation, resource, "resource tenant does not match principal tenant")
	}

	required := requiredPermission(resource.Kind, operation)
	if !hasPermission(g.permissions[principal.Role], required) {
		return g.deny(ctx, principal, operation, resource, fmt.Sprintf("role %q lacks permission %q", principal.Role, required))
	}

	if !subsetOf(resource.Domains, principal.Domains) {
		return g.deny(ctx, principal, operation, resource, "resource domains exceed principal domain membership")
	}

	return Decision{Allow: true}, nil
}

func (g *Gate) deny(ctx context.Context, principal domain.Principal, operation string, resource ResourceRef, reason string) (Decision, error) {
	_ = g.audit.Record(ctx, domain.AuditEntry{
		TenantID:     principal.TenantID,
		PrincipalID:  principal.ID,
		EventKind:    "policy.denied",
		ResourceKind: resource.Kind,
		ResultStatus: "denied",
		CreatedAt:    time.Now().UTC(),
		Metadata: map[string]interface{}{
			"operation": operation,
			"reason":    reason,
		},
	})
	return Decision{Allow: false, Reason: reason}, corexerr.Authzf("%s", reason).WithCorrelation(principal.ID)
}

// Scope returns the mandatory tenant filter every subsequent query
// against a tenant-scoped repository must apply.
func (g *Gate) Scope(principal domain.Principal) domain.Filter {
	return domain.Scoped(principal.TenantID)
}

// FilterAccessible partitions resources into those the principal's
// domain membership covers and reports whether any were withheld, so a
// caller can surface the "additional data exists outside your scope"
// hint required by DBAC's graceful degradation without ever returning
// the content of the withheld resources.
func FilterAccessible(principal domain.Principal, resources []ResourceRef) (accessible []ResourceRef, hiddenCount int) {
	for _, r := range resources {
		if subsetOf(r.Domains, principal.Domains) {
			accessible = append(accessible, r)
		} else {
			hiddenCount++
		}
	}
	return accessible, hiddenCount
}
