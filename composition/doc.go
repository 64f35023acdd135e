// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package composition implements the Composition Scheduler: execution of
a single specialist or a composition of specialists under a shared
context and deadline.

Four composition patterns are supported: Pipeline (sequential, stops on
first failure), FanOut (concurrent branches merged by a synthesis
specialist, tolerant of partial failure), Gate (producer/verifier with a
retry bound), and TDDLoop (builder/tester with an iteration bound,
tester authoritative). A separate Scheduler runs a DAG of tasks in
topologically sorted layers, executing each layer's ready tasks
concurrently via golang.org/x/sync/errgroup and detecting cycles before
any task runs.

Every pattern records a structured per-stage history: specialist
identifier, timing, model tier, token consumption, output, error, and
any rollback handles produced — the same shape the write gateway
consults when deciding whether an operation requires a rollback.
*/
package composition
