// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package reasoning

import (
	"context"
	"fmt"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// learn extracts durable memories from the completed turn, applies any
// explicit feedback against previously cited chunks, and rolls forward
// goal progress. Extraction and storage failures are logged into the
// phase record rather than failing the turn outright: a turn that
// answered correctly should not fail just because learning from it did
// not.
func (p *Pipeline) learn(ctx context.Context, req Request, assistantTurn string) []string {
	var notes []string

	if p.extractor != nil && p.storer != nil {
		memories, err := p.extractor.Extract(ctx, req.TenantID, req.Principal.ID, req.ConversationID, req.UserTurn, assistantTurn)
		if err != nil {
			notes = append(notes, fmt.Sprintf("extraction failed: %v", err))
		} else {
			for i := range memories {
				if err := p.storeUserMemory(ctx, memories[i]); err != nil {
					notes = append(notes, fmt.Sprintf("failed to store extracted memory: %v", err))
				}
			}
			if len(memories) > 0 {
				notes = append(notes, fmt.Sprintf("extracted %d memories", len(memories)))
			}
		}
	}

	if req.Feedback != nil {
		p.applyFeedback(ctx, req, &notes)
	}

	if req.GoalID != "" && p.goalProgress != nil {
		note := domain.ProgressNote{At: p.now(), Note: fmt.Sprintf("conversation %s: %s", req.ConversationID, req.UserTurn)}
		if err := p.goalProgress.AppendProgress(ctx, req.TenantID, req.GoalID, note); err != nil {
			notes = append(notes, fmt.Sprintf("failed to record goal progress: %v", err))
		}
	}

	return notes
}

func (p *Pipeline) applyFeedback(ctx context.Context, req Request, notes *[]string) {
	if p.chunkFeedback == nil {
		return
	}
	delta := int64(1)
	if !req.Feedback.Positive {
		delta = -1
	}
	for _, documentID := range req.Feedback.ChunkIDs {
		if err := p.chunkFeedback.AdjustFeedback(ctx, documentID, delta); err != nil {
			*notes = append(*notes, fmt.Sprintf("failed to adjust feedback for document %s: %v", documentID, err))
		}
	}

	if !req.Feedback.Positive && p.storer != nil {
		correction := domain.Memory{
			Scope:      domain.MemoryScopeUser,
			ScopeID:    req.Principal.ID,
			TenantID:   req.TenantID,
			Kind:       domain.MemoryKindFact,
			Content:    fmt.Sprintf("prior answer in message %s was marked incorrect by the user", req.Feedback.MessageID),
			Provenance: fmt.Sprintf("feedback:message:%s", req.Feedback.MessageID),
			Importance: 0.7,
		}
		if err := p.storeUserMemory(ctx, correction); err != nil {
			*notes = append(*notes, fmt.Sprintf("failed to store correction memory: %v", err))
		}
	}
}

func (p *Pipeline) storeUserMemory(ctx context.Context, m domain.Memory) error {
	if p.memStoreBuilder == nil {
		return corexerr.Internalf("no memory store request builder configured")
	}
	req := p.memStoreBuilder(m)
	return p.storer.Store(ctx, req)
}
