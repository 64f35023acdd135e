// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package reasoning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agentcore/platform/composition"
	"agentcore/platform/domain"
	"agentcore/platform/memory"
	"agentcore/platform/shared/logger"
)

// Pipeline wires the Observe, Think, Verify, and Learn phases together.
// Every collaborator is an interface so a deployment can swap a fake in
// tests or a real adapter in production without the pipeline itself
// changing.
type Pipeline struct {
	history       HistoryLoader
	memories      MemoryRecaller
	retriever     DocumentRetriever
	goals         GoalLister
	goalProgress  GoalProgressRecorder
	intentClassifier IntentClassifier
	complexity    composition.Classifier
	planBuilder   PlanBuilder
	writeProposer WriteProposer
	extractor     MemoryExtractor
	storer        MemoryStorer
	memStoreBuilder MemoryStoreRequestBuilder
	chunkFeedback ChunkDeprioritizer
	trace         TraceRecorder
	now           func() time.Time
	log           *logger.Logger
}

// Deps collects every collaborator a Pipeline needs. Fields left nil
// degrade gracefully: a pipeline with no GoalLister simply observes no
// active goals rather than failing the turn.
type Deps struct {
	History       HistoryLoader
	Memories      MemoryRecaller
	Retriever     DocumentRetriever
	Goals         GoalLister
	GoalProgress  GoalProgressRecorder
	IntentClassifier IntentClassifier
	Complexity    composition.Classifier
	PlanBuilder   PlanBuilder
	WriteProposer WriteProposer
	Extractor     MemoryExtractor
	Storer        MemoryStorer
	MemStoreBuilder MemoryStoreRequestBuilder
	ChunkFeedback ChunkDeprioritizer
	Trace         TraceRecorder
	Now           func() time.Time
}

// DefaultMemoryStoreRequestBuilder stores a memory at user scope, the
// only scope that does not require the compliance fields (anonymized
// content, source principal count, classification, sharing policy)
// that only a department- or plant-scope caller can supply.
func DefaultMemoryStoreRequestBuilder(m domain.Memory) memory.StoreRequest {
	return memory.StoreRequest{Memory: m}
}

// New constructs a Pipeline from deps. PlanBuilder is the only
// collaborator without which Verify cannot run; every other nil field
// degrades that phase's contribution rather than failing the turn.
func New(deps Deps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	builder := deps.MemStoreBuilder
	if builder == nil {
		builder = DefaultMemoryStoreRequestBuilder
	}
	return &Pipeline{
		history:          deps.History,
		memories:         deps.Memories,
		retriever:        deps.Retriever,
		goals:            deps.Goals,
		goalProgress:     deps.GoalProgress,
		intentClassifier: deps.IntentClassifier,
		complexity:       deps.Complexity,
		planBuilder:      deps.PlanBuilder,
		writeProposer:    deps.WriteProposer,
		extractor:        deps.Extractor,
		storer:           deps.Storer,
		memStoreBuilder:  builder,
		chunkFeedback:    deps.ChunkFeedback,
		trace:            deps.Trace,
		now:              now,
		log:              logger.New("reasoning"),
	}
}

// Turn is the outcome of driving one Request through all four phases.
type Turn struct {
	Observation   Observation
	Plan          Plan
	Result        Result
	WriteOperation *domain.WriteOperation
	Phases        []domain.ReasoningPhaseRecord
}

// Run drives req through Observe, Think, Verify, and Learn in order,
// recording a ReasoningPhaseRecord for each and persisting the trace
// via TraceRecorder when one is configured. A phase failure stops the
// pipeline and is recorded as that phase's Err; phases already
// completed remain in the returned trace.
func (p *Pipeline) Run(ctx context.Context, req Request) (Turn, error) {
	var turn Turn

	obs, rec, err := p.timedPhase(ctx, "observe", func(ctx context.Context) (string, error) {
		o, err := p.observe(ctx, req)
		turn.Observation = o
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d history, %d memories, %d chunks", len(o.History), len(o.Memories), len(o.RetrievedChunks)), nil
	})
	turn.Phases = append(turn.Phases, rec)
	if err != nil {
		p.persistTrace(ctx, req, turn.Phases)
		return turn, err
	}

	var plan Plan
	_, rec, err = p.timedPhase(ctx, "think", func(ctx context.Context) (string, error) {
		built, err := p.think(ctx, req, obs)
		plan = built
		turn.Plan = built
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("intent=%s pattern=%s", built.Intent, built.Pattern), nil
	})
	turn.Phases = append(turn.Phases, rec)
	if err != nil {
		p.persistTrace(ctx, req, turn.Phases)
		return turn, err
	}

	var result Result
	var writeOp *domain.WriteOperation
	_, rec, err = p.timedPhase(ctx, "verify", func(ctx context.Context) (string, error) {
		r, op, err := p.verify(ctx, req, plan)
		result = r
		writeOp = op
		turn.Result = r
		turn.WriteOperation = op
		if err != nil {
			return "", err
		}
		if op != nil {
			return fmt.Sprintf("proposed write operation against connector %s", op.Connector), nil
		}
		return fmt.Sprintf("%d stages, %d chars", len(r.History), len(r.Output.Content)), nil
	})
	turn.Phases = append(turn.Phases, rec)
	if err != nil {
		p.persistTrace(ctx, req, turn.Phases)
		return turn, err
	}

	assistantTurn := result.Output.Content
	if writeOp != nil {
		assistantTurn = writeOp.Rationale
	}
	_, rec, _ = p.timedPhase(ctx, "learn", func(ctx context.Context) (string, error) {
		notes := p.learn(ctx, req, assistantTurn)
		if len(notes) == 0 {
			return "no new memories or feedback", nil
		}
		return strings.Join(notes, "; "), nil
	})
	turn.Phases = append(turn.Phases, rec)

	p.persistTrace(ctx, req, turn.Phases)
	return turn, nil
}

func (p *Pipeline) timedPhase(ctx context.Context, name string, fn func(context.Context) (string, error)) (string, domain.ReasoningPhaseRecord, error) {
	rec := domain.ReasoningPhaseRecord{Phase: name, StartedAt: p.now()}
	summary, err := fn(ctx)
	rec.EndedAt = p.now()
	rec.Summary = summary
	if err != nil {
		rec.Err = err.Error()
	}
	return summary, rec, err
}

func (p *Pipeline) persistTrace(ctx context.Context, req Request, phases []domain.ReasoningPhaseRecord) {
	if p.trace == nil {
		return
	}
	if err := p.trace.Persist(ctx, req.ConversationID, phases); err != nil {
		p.log.Warn(req.Principal.ID, req.ConversationID, "failed to persist reasoning trace", map[string]interface{}{"error": err.Error()})
	}
}
