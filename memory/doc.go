// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package memory implements the Memory Service: persistence and recall of
learned facts about a principal, agent, department, or plant, plus
enforcement of scope-escalation compliance when a memory is written
above user scope.

Recall ranks candidates by the product of cosine similarity to the
query embedding and current importance. Store enforces anonymization,
k-anonymity, and classification-ceiling checks before a memory may be
visible at department or plant scope. Decay is invoked by the
background worker pool to age down memories that have not been
accessed recently.
*/
package memory
