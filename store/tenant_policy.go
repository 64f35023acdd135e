// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import "context"

// StaticTenantPolicy implements writegateway.TenantPolicy with one
// deployment-wide flag. Per-tenant overrides belong in a tenant
// settings table once the core grows tenant-admin-editable policy;
// today every tenant shares the same operator-configured default.
type StaticTenantPolicy struct {
	AutoApproveLowRiskDefault bool
}

// AutoApproveLowRisk implements writegateway.TenantPolicy.
func (p StaticTenantPolicy) AutoApproveLowRisk(ctx context.Context, tenantID string) (bool, error) {
	return p.AutoApproveLowRiskDefault, nil
}
