// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package modelrouter implements the Model Router: concrete inference
endpoint selection per request plus budget enforcement across the
light, standard, and heavy model tiers (embedding is a separate
concern, served through the same Provider interface under its own
tier).

Selection honors an operator-pinned tier first, otherwise classifies
the request's complexity using the light tier and maps it to a target
tier. A budget gate downgrades the selected tier when it would overshoot
the tenant's remaining per-period budget, failing with a BUDGET error
only once the light tier itself would overshoot. A transient failure or
a low-confidence signal from the chosen tier triggers at most one
escalation to the next-higher tier per request.

Token consumption is recorded after each call through a BudgetLedger,
atomically per call, mirroring the teacher's usage-recording boundary
in common/usage.
*/
package modelrouter
