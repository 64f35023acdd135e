// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package reasoning

import (
	"context"

	"golang.org/x/sync/errgroup"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/retrieval"
)

// observe loads recent history, active goals, recalled memories, and
// retrieved document chunks. Memory recall and document retrieval have
// no data dependency on each other and run concurrently.
func (p *Pipeline) observe(ctx context.Context, req Request) (Observation, error) {
	var obs Observation

	if p.history != nil {
		history, err := p.history.Recent(ctx, req.ConversationID, req.ContextWindow)
		if err != nil {
			return obs, corexerr.Wrap(corexerr.Internal, "history_load_failed", "failed to load conversation history", err)
		}
		obs.History = history
	}

	if p.goals != nil {
		goals, err := p.goals.ListActive(ctx, req.TenantID, domain.MemoryScopeUser, req.Principal.ID)
		if err != nil {
			return obs, corexerr.Wrap(corexerr.Internal, "goal_list_failed", "failed to load active goals", err)
		}
		obs.ActiveGoals = goals
	}

	g := new(errgroup.Group)
	if p.memories != nil {
		g.Go(func() error {
			memories, err := p.memories.Recall(ctx, req.TenantID, domain.MemoryScopeUser, req.Principal.ID, req.UserTurn, 0)
			if err != nil {
				return corexerr.Wrap(corexerr.Internal, "memory_recall_failed", "failed to recall memories", err)
			}
			obs.Memories = memories
			return nil
		})
	}
	if p.retriever != nil {
		g.Go(func() error {
			results, warnings, err := p.retriever.Search(ctx, req.TenantID, req.Principal.ID, req.ConversationID, req.UserTurn, retrieval.MetadataFilter{ClassificationCeiling: req.Ceiling})
			if err != nil {
				return corexerr.Wrap(corexerr.Internal, "retrieval_failed", "failed to retrieve documents", err)
			}
			obs.RetrievedChunks = results
			obs.RetrievalWarnings = warnings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return obs, err
	}

	return obs, nil
}
