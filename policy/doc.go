// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package policy implements the Policy Gate: the single synchronous
decision point every request and every cross-component call passes
through at a trust boundary.

Four independent checks compose into one decision: authentication
validity, role-based permission on the operation/resource-kind pair,
tenant-match between principal and resource, and domain-based access
control (DBAC) over the information domains a resource touches. Gate
decisions are synchronous and perform no I/O beyond the in-memory
permission tables built at construction time — the gate does not query
a database per check.

The tenant scope returned by Scope is the same opaque, mandatory filter
consumed by domain.Repository implementations, so it is structurally
impossible to run a tenant-scoped query without it.
*/
package policy
