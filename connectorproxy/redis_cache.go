// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package connectorproxy

import (
	"context"
	"encoding/json"
	"time"

	"agentcore/platform/connectors/base"
	"agentcore/platform/corexerr"
)

// RedisCache is a Cache backed by any base.Connector exposing Redis's
// GET/SET/DELETE command surface — normally *redis.RedisConnector, but
// any connector honoring that contract (including one pointed at
// miniredis in tests) satisfies it. Keys are namespaced by tenant so a
// single Redis instance can serve every tenant's cache without
// cross-tenant bleed.
type RedisCache struct {
	conn base.Connector
}

// NewRedisCache wraps an already-connected Redis connector.
func NewRedisCache(conn base.Connector) *RedisCache {
	return &RedisCache{conn: conn}
}

func (c *RedisCache) namespacedKey(tenantID, key string) string {
	return "connectorproxy:" + tenantID + ":" + key
}

// Get retrieves a cached QueryResult, returning false on miss, expiry,
// or a decode failure (treated as a miss rather than an error, since a
// stale or corrupt cache entry should never fail the caller's read).
func (c *RedisCache) Get(ctx context.Context, tenantID, key string) (*base.QueryResult, bool) {
	result, err := c.conn.Query(ctx, &base.Query{
		Statement:  "GET",
		Parameters: map[string]interface{}{"key": c.namespacedKey(tenantID, key)},
	})
	if err != nil || len(result.Rows) == 0 {
		return nil, false
	}
	row := result.Rows[0]
	exists, _ := row["exists"].(bool)
	if !exists {
		return nil, false
	}
	raw, ok := row["value"].(string)
	if !ok {
		return nil, false
	}
	var decoded base.QueryResult
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, false
	}
	return &decoded, true
}

// Set stores a QueryResult under the tenant-namespaced key with the
// given TTL.
func (c *RedisCache) Set(ctx context.Context, tenantID, key string, result *base.QueryResult, ttl time.Duration) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "cache_encode_failed", "failed to encode query result for caching", err)
	}
	cmdResult, err := c.conn.Execute(ctx, &base.Command{
		Action: "SET",
		Parameters: map[string]interface{}{
			"key":   c.namespacedKey(tenantID, key),
			"value": string(encoded),
			"ttl":   ttl.Seconds(),
		},
	})
	if err != nil {
		return corexerr.Wrap(corexerr.Upstream, "cache_set_failed", "redis SET failed", err)
	}
	if !cmdResult.Success {
		return corexerr.New(corexerr.Upstream, "cache_set_rejected", cmdResult.Message)
	}
	return nil
}

// Invalidate deletes a single cache entry.
func (c *RedisCache) Invalidate(ctx context.Context, tenantID, key string) error {
	_, err := c.conn.Execute(ctx, &base.Command{
		Action:     "DELETE",
		Parameters: map[string]interface{}{"key": c.namespacedKey(tenantID, key)},
	})
	if err != nil {
		return corexerr.Wrap(corexerr.Upstream, "cache_invalidate_failed", "redis DELETE failed", err)
	}
	return nil
}
