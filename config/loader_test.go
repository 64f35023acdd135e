// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultsWhenNoFilesPresent(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_top_k: 15\nchunk_size_tokens: 256\nchunk_overlap_tokens: 32\n"), 0o600))

	cfg, err := Load("", path)
	require.NoError(t, err)
	require.Equal(t, 15, cfg.VectorTopK)
	require.Equal(t, 256, cfg.ChunkSizeTokens)
}

func TestLoadAppliesEnvOverrideOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_top_k: 15\n"), 0o600))

	t.Setenv("AGENTCORE_VECTOR_TOP_K", "3")
	cfg, err := Load("", path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.VectorTopK)
}

func TestLoadRejectsInvalidResultingConfig(t *testing.T) {
	t.Setenv("AGENTCORE_VECTOR_TOP_K", "500")
	_, err := Load("", "")
	require.Error(t, err)
}
