// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package connectorproxy

import (
	"context"
	"time"

	"agentcore/platform/connectors/base"
	"agentcore/platform/domain"
)

// ConnectorResolver is the subset of connectors/registry.Registry the
// proxy depends on: name-based lookup with lazy instantiation, and the
// tenant access check the registry already enforces from connector
// configuration.
type ConnectorResolver interface {
	Get(name string) (base.Connector, error)
	ValidateTenantAccess(connectorName, tenantID string) error
}

// Cache is the tenant-scoped result cache for Query calls. A cache
// implementation may be purely in-memory or backed by a connector
// (typically the Redis connector), which is why its methods take a
// context.
type Cache interface {
	Get(ctx context.Context, tenantID, key string) (*base.QueryResult, bool)
	Set(ctx context.Context, tenantID, key string, result *base.QueryResult, ttl time.Duration) error
	Invalidate(ctx context.Context, tenantID, key string) error
}

// RateLimiter throttles calls per tenant. *sdk.MultiTenantRateLimiter
// satisfies this directly.
type RateLimiter interface {
	Wait(ctx context.Context, tenantID string) error
}

// IdempotencyStore records the outcome of an Execute call under its
// caller-supplied key so a retried approval replays the prior result
// instead of re-executing the side effect.
type IdempotencyStore interface {
	Lookup(ctx context.Context, tenantID, key string) (result map[string]interface{}, rollbackHandle string, found bool)
	Record(ctx context.Context, tenantID, key string, result map[string]interface{}, rollbackHandle string) error
}

// AuditSink receives one entry per connector call, success or failure.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// Config tunes proxy-wide defaults.
type Config struct {
	// QueryCacheTTL is the default TTL applied to cached Query results
	// when a call does not specify its own, named cache_ttl_seconds in
	// the deployment configuration surface.
	QueryCacheTTL time.Duration
	// URLValidation governs SSRF protection for connectors whose Query
	// statement is itself a URL (e.g. http_api-family connectors).
	URLValidation base.URLValidationOptions
}

// DefaultConfig returns the proxy's default tuning.
func DefaultConfig() Config {
	return Config{
		QueryCacheTTL: 30 * time.Second,
		URLValidation: base.DefaultURLValidationOptions(),
	}
}
