// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigPassesValidation(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsOutOfRangeChunkSize(t *testing.T) {
	cfg := Default()
	cfg.ChunkSizeTokens = 16
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOverlapNotLessThanSize(t *testing.T) {
	cfg := Default()
	cfg.ChunkOverlapTokens = cfg.ChunkSizeTokens
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsVectorTopKOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.VectorTopK = 21
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsWorkerConcurrencyOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.BackgroundWorkerConcurrency = 0
	require.Error(t, cfg.Validate())

	cfg.BackgroundWorkerConcurrency = 33
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsHybridWeightOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.HybridSemanticWeight = 1.5
	require.Error(t, cfg.Validate())
}

func TestRetrievalConfigProjectsHybridWeightsAndTopK(t *testing.T) {
	cfg := Default()
	cfg.HybridSemanticWeight = 0.7
	cfg.HybridLexicalWeight = 0.3
	cfg.VectorTopK = 7

	rc := cfg.RetrievalConfig()
	require.Equal(t, 0.7, rc.SemanticWeight)
	require.Equal(t, 0.3, rc.LexicalWeight)
	require.Equal(t, 7, rc.FinalK)
}

func TestWorkerPoolConfigProjectsConcurrency(t *testing.T) {
	cfg := Default()
	cfg.BackgroundWorkerConcurrency = 12
	require.Equal(t, 12, cfg.WorkerPoolConfig().Concurrency)
}

func TestValidateRejectsNonPositiveRequestDeadline(t *testing.T) {
	cfg := Default()
	cfg.RequestDeadlineSeconds = 0
	require.Error(t, cfg.Validate())
}

func TestRequestDeadlineProjectsSecondsToDuration(t *testing.T) {
	cfg := Default()
	cfg.RequestDeadlineSeconds = 45
	require.Equal(t, 45*time.Second, cfg.RequestDeadline())
}
