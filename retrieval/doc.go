// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

/*
Package retrieval implements the Retrieval Engine: hybrid semantic and
lexical search over a tenant's document chunks, fused by reciprocal
rank fusion, optionally reranked by a cross-encoder, and adjusted by
per-chunk feedback weighting.

Semantic and lexical search run concurrently via golang.org/x/sync/errgroup.
Embedding failure is fatal; lexical failure degrades silently with a
warning; reranker failure degrades to RRF order. The engine never
returns an error for zero results — an empty result set is a normal
outcome.
*/
package retrieval
