// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package reasoning

import (
	"context"

	"agentcore/platform/composition"
	"agentcore/platform/domain"
	"agentcore/platform/memory"
	"agentcore/platform/retrieval"
)

// Intent is the routing classification of a user turn.
type Intent string

const (
	IntentRead  Intent = "read"
	IntentWrite Intent = "write"
)

// Feedback is an explicit signal on a prior turn's cited chunks.
type Feedback struct {
	MessageID string
	Positive  bool
	ChunkIDs  []string
}

// Request is one turn driven through the pipeline.
type Request struct {
	TenantID       string
	Principal      domain.Principal
	ConversationID string
	UserTurn       string
	ContextWindow  int // max tokens of history to load
	Feedback       *Feedback
	GoalID         string                 // optional, turn references this active goal
	Ceiling        domain.Classification  // classification ceiling the dispatcher computed for this request
}

// Observation is the Observe phase's structured output.
type Observation struct {
	History           []domain.Message
	Memories          []domain.Memory
	ActiveGoals       []domain.Goal
	RetrievedChunks   []retrieval.Result
	RetrievalWarnings []string
}

// Plan is the Think phase's structured output.
type Plan struct {
	Intent     Intent
	Pattern    composition.Pattern
	Specialist composition.Specialist   // used when Pattern == PatternDirect
	Pipeline   []composition.Specialist // used when Pattern == PatternPipeline
	FanOut     []composition.Specialist // used when Pattern == PatternFanOut
	Synthesis  composition.Specialist   // used when Pattern == PatternFanOut
	Gate       *GatePlan                // used when Pattern == PatternGate
}

// GatePlan configures a Gate pattern invocation.
type GatePlan struct {
	Producer   composition.Specialist
	Verifier   composition.Verifier
	MaxRetries int
}

// Result is the Verify phase's structured output for a non-write turn.
type Result struct {
	Output  composition.Output
	History []composition.StageRecord
}

// HistoryLoader loads recent conversation turns bounded to a token
// budget.
type HistoryLoader interface {
	Recent(ctx context.Context, conversationID string, maxTokens int) ([]domain.Message, error)
}

// MemoryRecaller is the Observe-phase boundary onto the memory service.
type MemoryRecaller interface {
	Recall(ctx context.Context, tenantID string, scope domain.MemoryScope, scopeID, query string, topK int) ([]domain.Memory, error)
}

// MemoryExtractor is the Learn-phase boundary that distills durable
// facts out of a completed turn.
type MemoryExtractor interface {
	Extract(ctx context.Context, tenantID, scopeID, conversationID, userTurn, assistantTurn string) ([]domain.Memory, error)
}

// MemoryStorer persists a memory the Learn phase extracted or
// synthesized as a feedback correction.
type MemoryStorer interface {
	Store(ctx context.Context, req memory.StoreRequest) error
}

// DocumentRetriever is the Observe-phase boundary onto the retrieval
// engine.
type DocumentRetriever interface {
	Search(ctx context.Context, tenantID, clientID, requestID, query string, filter retrieval.MetadataFilter) ([]retrieval.Result, []string, error)
}

// PlanBuilder turns an Observation and the pattern SelectPattern chose
// into a concrete Plan naming the specialists to invoke. What
// specialists exist and how they map to a request is deployment
// configuration, not pipeline logic.
type PlanBuilder interface {
	Build(ctx context.Context, pattern composition.Pattern, intent Intent, observation Observation, userTurn string) (Plan, error)
}

// GoalLister loads active goals in scope for the observe phase.
type GoalLister interface {
	ListActive(ctx context.Context, tenantID string, scope domain.MemoryScope, scopeID string) ([]domain.Goal, error)
}

// GoalProgressRecorder appends a progress note to a goal during Learn.
type GoalProgressRecorder interface {
	AppendProgress(ctx context.Context, tenantID, goalID string, note domain.ProgressNote) error
}

// IntentClassifier classifies a user turn as read or write intent.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, text string) (Intent, error)
}

// ChunkDeprioritizer adjusts a document's feedback score following
// explicit positive/negative signal on a prior turn.
type ChunkDeprioritizer interface {
	AdjustFeedback(ctx context.Context, documentID string, delta int64) error
}

// WriteProposer is the write gateway boundary Verify hands off to when
// Plan.Intent is IntentWrite.
type WriteProposer interface {
	Propose(ctx context.Context, op domain.WriteOperation) (domain.WriteOperation, error)
}

// TraceRecorder persists the reasoning trace produced by a turn.
type TraceRecorder interface {
	Persist(ctx context.Context, conversationID string, phases []domain.ReasoningPhaseRecord) error
}

// MemoryStoreRequestBuilder lets the pipeline ask the memory service to
// validate and store extracted memories without the reasoning package
// needing to know department/plant escalation rules itself.
type MemoryStoreRequestBuilder func(m domain.Memory) memory.StoreRequest
