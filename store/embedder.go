// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agentcore/platform/corexerr"
)

// HTTPEmbedder calls an OpenAI-compatible embeddings endpoint, the same
// request/response shape Ollama, Azure OpenAI, and most self-hosted
// embedding servers expose. It implements both retrieval.Embedder and
// memory.Embedder, which share the identical Embed(ctx, text) shape.
type HTTPEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHTTPEmbedder constructs an HTTPEmbedder. baseURL defaults to the
// OpenAI API when empty, mirroring connectors/http.HTTPConnector's
// timeout and client defaults.
func NewHTTPEmbedder(baseURL, apiKey, model string) *HTTPEmbedder {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &HTTPEmbedder{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed implements retrieval.Embedder and memory.Embedder.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "embed_request_marshal_failed", "failed to marshal embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "embed_request_build_failed", "failed to build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "embed_call_failed", "embedding request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "embed_response_read_failed", "failed to read embedding response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, corexerr.New(corexerr.Upstream, "embed_http_error", fmt.Sprintf("embedding endpoint returned %d: %s", resp.StatusCode, respBody))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "embed_response_decode_failed", "failed to decode embedding response", err)
	}
	if len(parsed.Data) == 0 {
		return nil, corexerr.New(corexerr.Upstream, "embed_empty_response", "embedding endpoint returned no vectors")
	}
	return parsed.Data[0].Embedding, nil
}

// BatchEmbedder adapts a single-text Embedder to worker.Embedder's
// batch shape, since the router's embedding-capable endpoint is called
// once per chunk rather than through a native batch API, keeping every
// caller of the embeddings endpoint going through the same HTTPEmbedder.
type BatchEmbedder struct {
	inner *HTTPEmbedder
}

// NewBatchEmbedder constructs a BatchEmbedder over inner.
func NewBatchEmbedder(inner *HTTPEmbedder) *BatchEmbedder {
	return &BatchEmbedder{inner: inner}
}

// Embed implements worker.Embedder.
func (b *BatchEmbedder) Embed(ctx context.Context, tenantID string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := b.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = embedding
	}
	return out, nil
}
