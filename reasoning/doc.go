// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package reasoning drives a single request through the four ordered
phases of the Agent Execution Core's reasoning pipeline: Observe, Think,
Verify, and Learn.

The phases themselves are strictly ordered. Within Observe, memory
recall and document retrieval run concurrently via
golang.org/x/sync/errgroup, since neither depends on the other's
result. Verify hands off to the write gateway when the composed plan's
intent implies a write rather than finalizing a response directly.
*/
package reasoning
