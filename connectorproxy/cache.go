// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package connectorproxy

import (
	"container/list"
	"context"
	"sync"
	"time"

	"agentcore/platform/connectors/base"
)

// memoryCacheEntry is one tenant-scoped cache slot.
type memoryCacheEntry struct {
	tenantID  string
	key       string
	result    *base.QueryResult
	expiresAt time.Time
}

// MemoryCache is a bounded, tenant-isolated LRU cache of Query results
// with per-entry TTL, the same CacheEntry/TTL shape as
// connectors/config.ConfigCache generalized to evict on capacity as
// well as on expiry. Every lookup and insert is scoped to (tenantID,
// key); a cache-wide eviction never crosses a tenant boundary.
type MemoryCache struct {
	capacity int
	mu       sync.Mutex
	order    *list.List
	entries  map[string]*list.Element // tenantID+":"+key -> element
}

// NewMemoryCache creates an in-memory cache holding up to capacity
// entries across all tenants combined, evicting least-recently-used
// entries once full.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func tenantCacheKey(tenantID, key string) string {
	return tenantID + "\x00" + key
}

// Get returns the cached result if present and unexpired.
func (c *MemoryCache) Get(_ context.Context, tenantID, key string) (*base.QueryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[tenantCacheKey(tenantID, key)]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*memoryCacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	resultCopy := *entry.result
	return &resultCopy, true
}

// Set inserts or replaces a cache entry with the given TTL.
func (c *MemoryCache) Set(_ context.Context, tenantID, key string, result *base.QueryResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	composite := tenantCacheKey(tenantID, key)
	if elem, ok := c.entries[composite]; ok {
		entry := elem.Value.(*memoryCacheEntry)
		entry.result = result
		entry.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(elem)
		return nil
	}

	entry := &memoryCacheEntry{
		tenantID:  tenantID,
		key:       key,
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
	elem := c.order.PushFront(entry)
	c.entries[composite] = elem

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeLocked(oldest)
		}
	}
	return nil
}

// Invalidate removes a single entry.
func (c *MemoryCache) Invalidate(_ context.Context, tenantID, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[tenantCacheKey(tenantID, key)]; ok {
		c.removeLocked(elem)
	}
	return nil
}

// InvalidateTenant removes every cached entry for a tenant, used when
// a tenant's connector configuration changes.
func (c *MemoryCache) InvalidateTenant(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for composite, elem := range c.entries {
		entry := elem.Value.(*memoryCacheEntry)
		if entry.tenantID == tenantID {
			delete(c.entries, composite)
			c.order.Remove(elem)
		}
	}
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryCacheEntry)
	delete(c.entries, tenantCacheKey(entry.tenantID, entry.key))
	c.order.Remove(elem)
}
