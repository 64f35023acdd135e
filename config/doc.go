// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

// Package config loads and validates the core's deployment
// configuration surface (spec §6.7): embedding dimensionality, chunking,
// retrieval, rate limiting, budgets, worker concurrency, approval
// timeouts, cache TTL, and hybrid search weights.
//
// Loading follows the teacher's layered precedence from
// connectors/config and the r3e-network-service_layer sibling's startup
// config: an optional .env file (github.com/joho/godotenv) seeds process
// environment variables, a YAML file provides the bulk of the structured
// configuration (gopkg.in/yaml.v3, with ${VAR} / ${VAR:-default}
// expansion matching connectors/config/file_loader.go), and any
// AGENTCORE_-prefixed environment variable overrides the corresponding
// YAML field last.
package config
