// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package domain defines the tenant-scoped entities shared by every
component of the Agent Execution Core: Tenant, Principal, Conversation,
Message, Document, DocumentChunk, Memory, Goal, Budget, WriteOperation,
ApprovalRequest, and AuditEntry.

Every entity that belongs to a tenant embeds TenantID and every
repository method in this package takes a tenant identifier explicitly,
so a caller cannot accidentally construct a cross-tenant query. There is
no ambient "current tenant" global; the policy gate and connector proxy
both rely on the tenant identifier being threaded through every call.
*/
package domain
