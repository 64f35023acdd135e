// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces every override variable, e.g. AGENTCORE_VECTOR_TOP_K.
const envPrefix = "AGENTCORE_"

// Load reads configuration in three layers, each overriding the last:
// package defaults, an optional YAML file at yamlPath, then any
// AGENTCORE_-prefixed environment variable. envFile, if non-empty, is
// loaded into the process environment first via godotenv so a local
// .env can supply those overrides without exporting them manually —
// matching the teacher's own env/env-file precedence in
// connectors/config and the sibling r3e-network-service_layer's startup
// config loader. A missing envFile or yamlPath is not an error; both are
// optional.
func Load(envFile, yamlPath string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: failed to read %s: %w", yamlPath, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: failed to parse %s: %w", yamlPath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideInt(&cfg.EmbeddingDimensions, "EMBEDDING_DIMENSIONS")
	overrideInt(&cfg.ChunkSizeTokens, "CHUNK_SIZE_TOKENS")
	overrideInt(&cfg.ChunkOverlapTokens, "CHUNK_OVERLAP_TOKENS")
	overrideInt(&cfg.VectorTopK, "VECTOR_TOP_K")
	overrideInt(&cfg.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	overrideInt64(&cfg.TokenBudgetDaily, "TOKEN_BUDGET_DAILY")
	overrideInt64(&cfg.TokenBudgetMonthly, "TOKEN_BUDGET_MONTHLY")
	overrideInt(&cfg.BackgroundWorkerConcurrency, "BACKGROUND_WORKER_CONCURRENCY")
	overrideInt(&cfg.ApprovalDefaultTimeoutSeconds, "APPROVAL_DEFAULT_TIMEOUT_SECONDS")
	overrideInt(&cfg.RequestDeadlineSeconds, "REQUEST_DEADLINE_SECONDS")
	overrideInt(&cfg.CacheTTLSeconds, "CACHE_TTL_SECONDS")
	overrideFloat(&cfg.HybridSemanticWeight, "HYBRID_SEMANTIC_WEIGHT")
	overrideFloat(&cfg.HybridLexicalWeight, "HYBRID_LEXICAL_WEIGHT")
}

func overrideInt(field *int, name string) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*field = n
	}
}

func overrideInt64(field *int64, name string) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*field = n
	}
}

func overrideFloat(field *float64, name string) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*field = f
	}
}
