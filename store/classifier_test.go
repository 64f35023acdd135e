// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"agentcore/platform/composition"
	"agentcore/platform/modelrouter"
	"agentcore/platform/reasoning"
)

func TestLightModelClassifierClassifyComplexity(t *testing.T) {
	srv := newChatServer(t, "heavy")
	defer srv.Close()

	classifier := NewLightModelClassifier(NewHTTPChatProvider("light", srv.URL, "", "gpt-4o-mini"))
	tier, err := classifier.ClassifyComplexity(context.Background(), "solve this multi-step problem")
	require.NoError(t, err)
	require.Equal(t, modelrouter.TierHeavy, tier)
}

func TestLightModelClassifierClassifyDefaultsToSimple(t *testing.T) {
	srv := newChatServer(t, "unparseable nonsense")
	defer srv.Close()

	classifier := NewLightModelClassifier(NewHTTPChatProvider("light", srv.URL, "", "gpt-4o-mini"))
	class, err := classifier.Classify(context.Background(), "what time is it")
	require.NoError(t, err)
	require.Equal(t, composition.ClassSimple, class)
}

func TestLightModelClassifierClassifyIntentWrite(t *testing.T) {
	srv := newChatServer(t, "write")
	defer srv.Close()

	classifier := NewLightModelClassifier(NewHTTPChatProvider("light", srv.URL, "", "gpt-4o-mini"))
	intent, err := classifier.ClassifyIntent(context.Background(), "please update the CRM record")
	require.NoError(t, err)
	require.Equal(t, reasoning.IntentWrite, intent)
}

func TestLightCompleterComplete(t *testing.T) {
	srv := newChatServer(t, "extracted fact: prefers dark mode")
	defer srv.Close()

	completer := NewLightCompleter(NewHTTPChatProvider("light", srv.URL, "", "gpt-4o-mini"))
	text, err := completer.Complete(context.Background(), "extract facts from this turn")
	require.NoError(t, err)
	require.Equal(t, "extracted fact: prefers dark mode", text)
}
