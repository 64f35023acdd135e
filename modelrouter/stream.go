// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package modelrouter

import (
	"context"

	"agentcore/platform/corexerr"
)

// RouteStream is the router's lazy interface: it performs the same
// tier selection and budget gate as Route, then streams tokens through
// handler in arrival order. If ctx is cancelled mid-stream, the partial
// response already produced is returned (for trace purposes) but an
// error is also returned so callers never treat a cancelled stream as
// a completed one.
func (r *Router) RouteStream(ctx context.Context, req Request, handler StreamHandler) (Response, Trace, error) {
	tier, err := r.selectInitialTier(ctx, req)
	if err != nil {
		return Response{}, Trace{}, err
	}

	var trace Trace
	tier, err = r.applyBudgetGate(ctx, req, tier, &trace)
	if err != nil {
		return Response{}, trace, err
	}
	trace.TierUsed = tier

	provider, ok := r.providers[tier]
	if !ok {
		return Response{}, trace, corexerr.Internalf("no provider registered for tier %q", tier)
	}

	resp, err := provider.CompleteStream(ctx, req.Prompt, req.Options, handler)
	if err != nil {
		if ctx.Err() != nil {
			return resp, trace, corexerr.Wrap(corexerr.Cancelled, "stream_cancelled", "stream cancelled by caller", ctx.Err())
		}
		return resp, trace, corexerr.Wrap(corexerr.Upstream, "stream_failed", "streaming model call failed", err)
	}

	if consumeErr := r.consume(ctx, req, tier, resp); consumeErr != nil {
		return resp, trace, consumeErr
	}
	return resp, trace, nil
}
