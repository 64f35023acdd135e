// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package domain

import "context"

// Filter narrows a repository listing. TenantID is mandatory on every
// Filter; the zero value is rejected by Scoped so a caller cannot
// construct a query that silently spans every tenant.
type Filter struct {
	TenantID string
	Fields   map[string]interface{}
	Limit    int
	Offset   int
}

// Scoped returns a Filter pinned to tenantID. Every repository query in
// the core is built through this constructor rather than a bare struct
// literal, mirroring the mandatory tenant_id column on every
// connectors/base.Query and Command.
func Scoped(tenantID string) Filter {
	return Filter{TenantID: tenantID, Fields: map[string]interface{}{}}
}

// With attaches an equality condition and returns the same Filter for
// chaining.
func (f Filter) With(field string, value interface{}) Filter {
	if f.Fields == nil {
		f.Fields = map[string]interface{}{}
	}
	f.Fields[field] = value
	return f
}

// Valid reports whether the filter carries a non-empty tenant scope.
func (f Filter) Valid() bool {
	return f.TenantID != ""
}

// Repository is the generic tenant-scoped persistence contract
// implemented by each domain entity's store. T is the entity type; ID is
// its identifier type (almost always string).
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, tenantID string, id ID) (T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, tenantID string, id ID) error
}

// AppendOnlyRepository is the contract for entities the core may insert
// but never mutate or remove, e.g. AuditEntry. Update and Delete are
// denied at this boundary rather than merely unimplemented.
type AppendOnlyRepository[T any, ID comparable] interface {
	Get(ctx context.Context, tenantID string, id ID) (T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	Create(ctx context.Context, entity T) error
}
