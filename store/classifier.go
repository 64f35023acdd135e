// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"strings"

	"agentcore/platform/composition"
	"agentcore/platform/modelrouter"
	"agentcore/platform/reasoning"
)

// LightModelClassifier asks the light tier's chat provider to label a
// prompt, implementing both modelrouter.ComplexityClassifier and
// composition.Classifier: the router needs a Tier back, composition
// needs a RequestClass back, and both questions are answered by the
// same one-word completion against the same cheap model.
type LightModelClassifier struct {
	provider *HTTPChatProvider
}

// NewLightModelClassifier constructs a LightModelClassifier over the
// light tier's provider.
func NewLightModelClassifier(provider *HTTPChatProvider) *LightModelClassifier {
	return &LightModelClassifier{provider: provider}
}

// ClassifyComplexity implements modelrouter.ComplexityClassifier.
func (c *LightModelClassifier) ClassifyComplexity(ctx context.Context, prompt string) (modelrouter.Tier, error) {
	resp, err := c.provider.Complete(ctx, complexityPrompt(prompt), modelrouter.Options{MaxTokens: 8})
	if err != nil {
		return modelrouter.TierLight, err
	}
	switch strings.ToLower(strings.TrimSpace(resp.Content)) {
	case "heavy":
		return modelrouter.TierHeavy, nil
	case "standard":
		return modelrouter.TierStandard, nil
	default:
		return modelrouter.TierLight, nil
	}
}

// Classify implements composition.Classifier.
func (c *LightModelClassifier) Classify(ctx context.Context, query string) (composition.RequestClass, error) {
	resp, err := c.provider.Complete(ctx, compositionPrompt(query), modelrouter.Options{MaxTokens: 8})
	if err != nil {
		return composition.ClassSimple, err
	}
	switch strings.ToLower(strings.TrimSpace(resp.Content)) {
	case "deep":
		return composition.ClassDeep, nil
	case "multi_perspective", "multi-perspective":
		return composition.ClassMultiPerspective, nil
	case "quality_critical", "quality-critical":
		return composition.ClassQualityCritical, nil
	default:
		return composition.ClassSimple, nil
	}
}

// ClassifyIntent implements reasoning.IntentClassifier.
func (c *LightModelClassifier) ClassifyIntent(ctx context.Context, text string) (reasoning.Intent, error) {
	resp, err := c.provider.Complete(ctx, intentPrompt(text), modelrouter.Options{MaxTokens: 4})
	if err != nil {
		return reasoning.IntentRead, err
	}
	if strings.ToLower(strings.TrimSpace(resp.Content)) == "write" {
		return reasoning.IntentWrite, nil
	}
	return reasoning.IntentRead, nil
}

// LightCompleter adapts an HTTPChatProvider's Complete, which returns a
// full modelrouter.Response, to memory.LightCompleter's plain
// (string, error) shape the Memory Service's fact-extraction prompt
// expects.
type LightCompleter struct {
	provider *HTTPChatProvider
}

// NewLightCompleter constructs a LightCompleter over the light tier's
// provider.
func NewLightCompleter(provider *HTTPChatProvider) *LightCompleter {
	return &LightCompleter{provider: provider}
}

// Complete implements memory.LightCompleter.
func (c *LightCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.provider.Complete(ctx, prompt, modelrouter.Options{MaxTokens: 512})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func intentPrompt(text string) string {
	return "Classify the following user turn as exactly one word, read or write, based on whether satisfying it requires changing external system state. Output nothing else.\n\n" + text
}

func complexityPrompt(prompt string) string {
	return "Classify the following request's reasoning complexity as exactly one word — light, standard, or heavy — and output nothing else.\n\n" + prompt
}

func compositionPrompt(query string) string {
	return "Classify the following request as exactly one of: simple, deep, multi_perspective, quality_critical. Output nothing else.\n\n" + query
}
