// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package connectorproxy

import (
	"context"
	"fmt"
	"time"

	"agentcore/platform/connectors/base"
	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/shared/logger"
)

// Proxy is the single path every connector call takes. It is safe for
// concurrent use.
type Proxy struct {
	connectors ConnectorResolver
	cache      Cache
	limiter    RateLimiter
	idempotent IdempotencyStore
	audit      AuditSink
	cfg        Config
	now        func() time.Time
	log        *logger.Logger
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, domain.AuditEntry) error { return nil }

// New constructs a Proxy. cache, limiter, and idempotent may be nil:
// with no cache, every Query is a live call; with no limiter, calls
// are never throttled; with no idempotency store, Execute re-runs on
// every retry.
func New(connectors ConnectorResolver, cache Cache, limiter RateLimiter, idempotent IdempotencyStore, audit AuditSink, cfg Config) *Proxy {
	if audit == nil {
		audit = nopAudit{}
	}
	return &Proxy{
		connectors: connectors,
		cache:      cache,
		limiter:    limiter,
		idempotent: idempotent,
		audit:      audit,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
		log:        logger.New("connectorproxy"),
	}
}

// QueryRequest is a tenant-scoped read call routed through the proxy.
type QueryRequest struct {
	TenantID    string
	Connector   string
	Statement   string
	Parameters  map[string]interface{}
	Timeout     time.Duration
	Limit       int
	CacheTTL    time.Duration // zero uses Config.QueryCacheTTL; negative disables caching
	RequestedBy string
}

// cacheKey derives a stable cache key from the statement and
// parameters. Two calls with identical statement and parameter values
// collide on purpose: that is the cache hit.
func (q QueryRequest) cacheKey() string {
	return fmt.Sprintf("%s:%s:%v:%d", q.Connector, q.Statement, q.Parameters, q.Limit)
}

// Query runs a read-only call through a connector, consulting the
// tenant-scoped cache first and recording the result on a miss.
func (p *Proxy) Query(ctx context.Context, req QueryRequest) (*base.QueryResult, error) {
	if req.TenantID == "" || req.Connector == "" {
		return nil, corexerr.Validationf("connector_query", "tenant and connector are required")
	}
	if err := p.connectors.ValidateTenantAccess(req.Connector, req.TenantID); err != nil {
		return nil, corexerr.Wrap(corexerr.Authz, "connector_access_denied", "tenant may not access this connector", err)
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, req.TenantID); err != nil {
			return nil, corexerr.Wrap(corexerr.Timeout, "connector_rate_limited", "rate limiter wait failed", err)
		}
	}

	key := req.cacheKey()
	ttl := req.CacheTTL
	if ttl == 0 {
		ttl = p.cfg.QueryCacheTTL
	}
	if p.cache != nil && ttl >= 0 {
		if cached, ok := p.cache.Get(ctx, req.TenantID, key); ok {
			cached.Cached = true
			return cached, nil
		}
	}

	conn, err := p.connectors.Get(req.Connector)
	if err != nil {
		p.recordAudit(ctx, req.TenantID, req.RequestedBy, req.Connector, "connector.query", "", false, err)
		return nil, corexerr.Wrap(corexerr.Upstream, "connector_lookup_failed", "failed to resolve connector", err)
	}

	result, err := conn.Query(ctx, &base.Query{
		Statement:  req.Statement,
		Parameters: req.Parameters,
		Timeout:    req.Timeout,
		Limit:      req.Limit,
	})
	p.recordAudit(ctx, req.TenantID, req.RequestedBy, req.Connector, "connector.query", req.Statement, err == nil, err)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "connector_query_failed", "connector query failed", err)
	}

	if p.cache != nil && ttl >= 0 {
		if setErr := p.cache.Set(ctx, req.TenantID, key, result, ttl); setErr != nil {
			p.log.Warn(req.RequestedBy, "", "failed to populate connector cache", map[string]interface{}{"error": setErr.Error()})
		}
	}
	return result, nil
}

// Execute implements writegateway.Executor. idempotencyKey is normally
// the WriteOperation's identifier, so a re-delivered approval replays
// the recorded outcome instead of running the command twice.
func (p *Proxy) Execute(ctx context.Context, op domain.WriteOperation) (map[string]interface{}, string, error) {
	if err := p.connectors.ValidateTenantAccess(op.Connector, op.TenantID); err != nil {
		return nil, "", corexerr.Wrap(corexerr.Authz, "connector_access_denied", "tenant may not access this connector", err)
	}

	if p.idempotent != nil {
		if result, handle, found := p.idempotent.Lookup(ctx, op.TenantID, op.ID); found {
			p.log.Info(op.RequestingPrincipal, op.ID, "replaying idempotent write result", nil)
			return result, handle, nil
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, op.TenantID); err != nil {
			return nil, "", corexerr.Wrap(corexerr.Timeout, "connector_rate_limited", "rate limiter wait failed", err)
		}
	}

	conn, err := p.connectors.Get(op.Connector)
	if err != nil {
		p.recordAudit(ctx, op.TenantID, op.RequestingPrincipal, op.Connector, "connector.execute", op.Operation, false, err)
		return nil, "", corexerr.Wrap(corexerr.Upstream, "connector_lookup_failed", "failed to resolve connector", err)
	}

	cmdResult, err := conn.Execute(ctx, &base.Command{
		Action:         op.Operation,
		Parameters:     op.Parameters,
		IdempotencyKey: op.ID,
	})
	p.recordAudit(ctx, op.TenantID, op.RequestingPrincipal, op.Connector, "connector.execute", op.Operation, err == nil && cmdResult != nil && cmdResult.Success, err)
	if err != nil {
		return nil, "", corexerr.Wrap(corexerr.Upstream, "connector_execute_failed", "connector execution failed", err)
	}
	if !cmdResult.Success {
		return nil, "", corexerr.New(corexerr.Upstream, "connector_execute_rejected", cmdResult.Message)
	}

	result := map[string]interface{}{
		"rows_affected": cmdResult.RowsAffected,
		"message":       cmdResult.Message,
	}
	if cmdResult.Metadata != nil {
		result["metadata"] = cmdResult.Metadata
	}
	rollbackHandle := op.Connector + ":" + op.Operation + ":" + op.ID

	if p.idempotent != nil {
		if recErr := p.idempotent.Record(ctx, op.TenantID, op.ID, result, rollbackHandle); recErr != nil {
			p.log.Warn(op.RequestingPrincipal, op.ID, "failed to persist idempotency record", map[string]interface{}{"error": recErr.Error()})
		}
	}
	return result, rollbackHandle, nil
}

// Rollback implements writegateway.Executor. The rollback handle
// encodes the connector and original action; the reversing command is
// connector-specific and looked up via Capabilities() at connect time,
// so Rollback only succeeds for connectors that advertise it.
func (p *Proxy) Rollback(ctx context.Context, rollbackHandle string) error {
	connectorName, action, opID, err := parseRollbackHandle(rollbackHandle)
	if err != nil {
		return corexerr.Wrap(corexerr.Validation, "rollback_handle_invalid", "malformed rollback handle", err)
	}

	conn, err := p.connectors.Get(connectorName)
	if err != nil {
		return corexerr.Wrap(corexerr.Upstream, "connector_lookup_failed", "failed to resolve connector for rollback", err)
	}

	_, err = conn.Execute(ctx, &base.Command{
		Action: "ROLLBACK_" + action,
		Parameters: map[string]interface{}{
			"original_operation_id": opID,
		},
	})
	if err != nil {
		return corexerr.Wrap(corexerr.Upstream, "connector_rollback_failed", "connector did not accept rollback", err)
	}
	return nil
}

func parseRollbackHandle(handle string) (connector, action, opID string, err error) {
	parts := splitN3(handle, ':')
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("expected connector:action:operationID, got %q", handle)
	}
	return parts[0], parts[1], parts[2], nil
}

func splitN3(s string, sep byte) []string {
	var parts []string
	start := 0
	count := 0
	for i := 0; i < len(s) && count < 2; i++ {
		if s[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
			count++
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func (p *Proxy) recordAudit(ctx context.Context, tenantID, principal, connector, eventKind, detail string, success bool, err error) {
	status := "success"
	if !success {
		status = "failure"
	}
	metadata := map[string]interface{}{"connector": connector, "detail": base.SanitizeLogString(detail)}
	if err != nil {
		metadata["error"] = base.SanitizeLogString(err.Error())
	}
	_ = p.audit.Record(ctx, domain.AuditEntry{
		TenantID:     tenantID,
		PrincipalID:  principal,
		EventKind:    eventKind,
		ResourceKind: "connector",
		ResourceID:   connector,
		ResultStatus: status,
		CreatedAt:    p.now(),
		Metadata:     metadata,
	})
}
