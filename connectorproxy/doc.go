// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package connectorproxy is the single path every connector call takes,
whether it originates from the retrieval engine's document fetch or
from an approved write operation. It wraps the connector registry with
four concerns the registry itself does not provide:

  - Tenant access validation before every call, using the registry's
    own ValidateTenantAccess.
  - A tenant-scoped, TTL-bound result cache for read (Query) calls,
    backed by a base.Connector so the same cache can run in-memory or
    against Redis without the proxy knowing the difference.
  - Pre- and post-call audit entries, so a connector outage or a
    malformed response is traceable to the call that produced it.
  - Idempotency on write (Execute) calls keyed by the caller-supplied
    key — normally a WriteOperation identifier — so a retried approval
    never re-executes a side effect.

Proxy implements writegateway.Executor directly: Execute resolves the
operation's connector from the registry, runs it with the operation ID
as the idempotency key, and returns a rollback handle the gateway can
hand back to Rollback later.
*/
package connectorproxy
