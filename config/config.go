// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"time"

	"agentcore/platform/connectorproxy"
	"agentcore/platform/corexerr"
	"agentcore/platform/retrieval"
	"agentcore/platform/worker"
	"agentcore/platform/writegateway"
)

// Config is the full recognized configuration surface of spec §6.7.
type Config struct {
	EmbeddingDimensions int `yaml:"embedding_dimensions"`

	ChunkSizeTokens    int `yaml:"chunk_size_tokens"`
	ChunkOverlapTokens int `yaml:"chunk_overlap_tokens"`

	VectorTopK int `yaml:"vector_top_k"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`

	TokenBudgetDaily   int64 `yaml:"token_budget_daily"`
	TokenBudgetMonthly int64 `yaml:"token_budget_monthly"`

	BackgroundWorkerConcurrency int `yaml:"background_worker_concurrency"`

	ApprovalDefaultTimeoutSeconds int `yaml:"approval_default_timeout_seconds"`

	RequestDeadlineSeconds int `yaml:"request_deadline_seconds"`

	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`

	HybridSemanticWeight float64 `yaml:"hybrid_semantic_weight"`
	HybridLexicalWeight  float64 `yaml:"hybrid_lexical_weight"`
}

// Default returns the deployment defaults named throughout spec §4 and
// §6.7.
func Default() Config {
	return Config{
		EmbeddingDimensions:           1536,
		ChunkSizeTokens:               512,
		ChunkOverlapTokens:            64,
		VectorTopK:                    10,
		RateLimitPerMinute:            60,
		TokenBudgetDaily:              1_000_000,
		TokenBudgetMonthly:            20_000_000,
		BackgroundWorkerConcurrency:   4,
		ApprovalDefaultTimeoutSeconds: 24 * 60 * 60,
		RequestDeadlineSeconds:        60,
		CacheTTLSeconds:               300,
		HybridSemanticWeight:          0.5,
		HybridLexicalWeight:           0.5,
	}
}

// Validate checks every field against the ranges spec §6.7 names,
// returning the first violation as a corexerr.Validation error.
func (c Config) Validate() error {
	switch {
	case c.EmbeddingDimensions <= 0:
		return corexerr.Validationf("embedding_dimensions", "must be positive, got %d", c.EmbeddingDimensions)
	case c.ChunkSizeTokens < 64 || c.ChunkSizeTokens > 2048:
		return corexerr.Validationf("chunk_size_tokens", "must be in [64, 2048], got %d", c.ChunkSizeTokens)
	case c.ChunkOverlapTokens < 0 || c.ChunkOverlapTokens > 256:
		return corexerr.Validationf("chunk_overlap_tokens", "must be in [0, 256], got %d", c.ChunkOverlapTokens)
	case c.ChunkOverlapTokens >= c.ChunkSizeTokens:
		return corexerr.Validationf("chunk_overlap_tokens", "must be less than chunk_size_tokens (%d), got %d", c.ChunkSizeTokens, c.ChunkOverlapTokens)
	case c.VectorTopK < 1 || c.VectorTopK > 20:
		return corexerr.Validationf("vector_top_k", "must be in [1, 20], got %d", c.VectorTopK)
	case c.RateLimitPerMinute <= 0:
		return corexerr.Validationf("rate_limit_per_minute", "must be positive, got %d", c.RateLimitPerMinute)
	case c.BackgroundWorkerConcurrency < 1 || c.BackgroundWorkerConcurrency > 32:
		return corexerr.Validationf("background_worker_concurrency", "must be in [1, 32], got %d", c.BackgroundWorkerConcurrency)
	case c.ApprovalDefaultTimeoutSeconds <= 0:
		return corexerr.Validationf("approval_default_timeout_seconds", "must be positive, got %d", c.ApprovalDefaultTimeoutSeconds)
	case c.RequestDeadlineSeconds <= 0:
		return corexerr.Validationf("request_deadline_seconds", "must be positive, got %d", c.RequestDeadlineSeconds)
	case c.CacheTTLSeconds < 0:
		return corexerr.Validationf("cache_ttl_seconds", "must be non-negative, got %d", c.CacheTTLSeconds)
	case c.HybridSemanticWeight < 0 || c.HybridSemanticWeight > 1:
		return corexerr.Validationf("hybrid_semantic_weight", "must be in [0, 1], got %f", c.HybridSemanticWeight)
	case c.HybridLexicalWeight < 0 || c.HybridLexicalWeight > 1:
		return corexerr.Validationf("hybrid_lexical_weight", "must be in [0, 1], got %f", c.HybridLexicalWeight)
	}
	return nil
}

// RetrievalConfig projects the shared surface onto retrieval.Config,
// keeping retrieval's own tuning knobs (RRF smoothing, rerank width) at
// their package defaults.
func (c Config) RetrievalConfig() retrieval.Config {
	cfg := retrieval.DefaultConfig()
	cfg.SemanticWeight = c.HybridSemanticWeight
	cfg.LexicalWeight = c.HybridLexicalWeight
	cfg.FinalK = c.VectorTopK
	return cfg
}

// WriteGatewayConfig projects the shared surface onto writegateway.Config.
func (c Config) WriteGatewayConfig() writegateway.Config {
	return writegateway.Config{
		DefaultApprovalTimeout: time.Duration(c.ApprovalDefaultTimeoutSeconds) * time.Second,
	}
}

// ConnectorProxyConfig projects the shared surface onto
// connectorproxy.Config.
func (c Config) ConnectorProxyConfig() connectorproxy.Config {
	cfg := connectorproxy.DefaultConfig()
	cfg.QueryCacheTTL = time.Duration(c.CacheTTLSeconds) * time.Second
	return cfg
}

// WorkerPoolConfig projects the shared surface onto worker.Config.
func (c Config) WorkerPoolConfig() worker.Config {
	cfg := worker.DefaultConfig()
	cfg.Concurrency = c.BackgroundWorkerConcurrency
	return cfg
}

// RequestDeadline returns the per-request deadline the dispatcher
// attaches to every inbound turn before it reaches the reasoning
// pipeline.
func (c Config) RequestDeadline() time.Duration {
	return time.Duration(c.RequestDeadlineSeconds) * time.Second
}
