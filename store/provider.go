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
	"agentcore/platform/modelrouter"
)

// HTTPChatProvider implements modelrouter.Provider against an
// OpenAI-compatible chat completions endpoint. One instance is
// constructed per tier, each pointed at that tier's model name, so the
// router's escalation ladder maps directly onto model choice (e.g.
// gpt-4o-mini for light, gpt-4o for standard, o1 for heavy) without the
// provider itself knowing about tiers.
type HTTPChatProvider struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHTTPChatProvider constructs an HTTPChatProvider. baseURL defaults
// to the OpenAI API when empty.
func NewHTTPChatProvider(name, baseURL, apiKey, model string) *HTTPChatProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &HTTPChatProvider{
		name:       name,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *HTTPChatProvider) Name() string { return p.name }

// IsHealthy reports true unconditionally; a real deployment would wire
// this to the provider's own status endpoint, but the example pack
// carries no such polling pattern for third-party LLM APIs to ground it
// on.
func (p *HTTPChatProvider) IsHealthy() bool { return true }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// Complete implements modelrouter.Provider.
func (p *HTTPChatProvider) Complete(ctx context.Context, prompt string, opts modelrouter.Options) (modelrouter.Response, error) {
	reqBody := chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return modelrouter.Response{}, corexerr.Wrap(corexerr.Internal, "chat_request_marshal_failed", "failed to marshal chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return modelrouter.Response{}, corexerr.Wrap(corexerr.Internal, "chat_request_build_failed", "failed to build chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return modelrouter.Response{}, corexerr.Wrap(corexerr.Upstream, "chat_call_failed", "chat completion request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return modelrouter.Response{}, corexerr.Wrap(corexerr.Upstream, "chat_response_read_failed", "failed to read chat response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return modelrouter.Response{}, corexerr.New(corexerr.Upstream, "chat_http_error", fmt.Sprintf("chat endpoint returned %d: %s", resp.StatusCode, respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return modelrouter.Response{}, corexerr.Wrap(corexerr.Upstream, "chat_response_decode_failed", "failed to decode chat response", err)
	}
	if len(parsed.Choices) == 0 {
		return modelrouter.Response{}, corexerr.New(corexerr.Upstream, "chat_empty_response", "chat endpoint returned no choices")
	}

	return modelrouter.Response{
		Content:          parsed.Choices[0].Message.Content,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		Confidence:       1,
		ModelUsed:        p.model,
		FinishReason:     parsed.Choices[0].FinishReason,
	}, nil
}

// CompleteStream implements modelrouter.Provider by falling back to a
// single non-streamed call and delivering the whole response as one
// token. Real token-level streaming needs an SSE reader over the chat
// endpoint's stream=true mode; no example in the pack demonstrates SSE
// consumption, so this degrades to single-shot delivery rather than
// hand-rolling an unverified SSE parser.
func (p *HTTPChatProvider) CompleteStream(ctx context.Context, prompt string, opts modelrouter.Options, handler modelrouter.StreamHandler) (modelrouter.Response, error) {
	resp, err := p.Complete(ctx, prompt, opts)
	if err != nil {
		return resp, err
	}
	if err := handler(resp.Content); err != nil {
		return resp, corexerr.Wrap(corexerr.Internal, "stream_handler_failed", "stream handler returned an error", err)
	}
	return resp, nil
}
