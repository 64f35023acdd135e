// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentVersionNext(t *testing.T) {
	tests := []struct {
		name string
		in   DocumentVersion
		want DocumentVersion
	}{
		{"simple minor bump", DocumentVersion{Major: 1, Minor: 0}, DocumentVersion{Major: 1, Minor: 1}},
		{"rolls major at ninth minor", DocumentVersion{Major: 1, Minor: 8}, DocumentVersion{Major: 2, Minor: 0}},
		{"does not roll early", DocumentVersion{Major: 2, Minor: 7}, DocumentVersion{Major: 2, Minor: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Next())
		})
	}
}

func TestBudgetRemaining(t *testing.T) {
	tests := []struct {
		name   string
		budget Budget
		want   int64
	}{
		{"under limit", Budget{Limit: 1000, Consumed: 300}, 700},
		{"at limit", Budget{Limit: 1000, Consumed: 1000}, 0},
		{"over limit", Budget{Limit: 1000, Consumed: 1200}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.budget.Remaining())
		})
	}
}

func TestPrincipalHasDomain(t *testing.T) {
	p := Principal{Domains: []string{"finance", "operations"}}
	assert.True(t, p.HasDomain("finance"))
	assert.False(t, p.HasDomain("safety"))
}

func TestFromWriteOperation(t *testing.T) {
	now := time.Now()
	op := WriteOperation{
		ID:          "wop-1",
		TenantID:    "t-1",
		Connector:   "postgres",
		Operation:   "insert_order",
		Risk:        RiskHigh,
		Rationale:   "emergency",
		RequestedAt: now,
		DeadlineAt:  now.Add(time.Hour),
	}
	req := FromWriteOperation(op)
	assert.Equal(t, op.ID, req.ID)
	assert.Equal(t, op.Risk, req.Risk)
	assert.Equal(t, op.Rationale, req.Rationale)
}

func TestFilterScoped(t *testing.T) {
	f := Scoped("tenant-a").With("status", "active")
	assert.True(t, f.Valid())
	assert.Equal(t, "tenant-a", f.TenantID)
	assert.Equal(t, "active", f.Fields["status"])

	empty := Filter{}
	assert.False(t, empty.Valid())
}
