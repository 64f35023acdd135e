// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package composition

import (
	"context"

	"golang.org/x/sync/errgroup"

	"agentcore/platform/corexerr"
)

// Pipeline runs specialists in order, each receiving the previous
// stage's output under the "previous_output" context key. It stops on
// the first failure and returns that stage's error as the pipeline's
// error.
func Pipeline(ctx context.Context, specialists []Specialist, input Input) (Output, []StageRecord, error) {
	history := make([]StageRecord, 0, len(specialists))
	current := input
	var last Output

	for _, s := range specialists {
		out, rec := runStage(ctx, s, current)
		history = append(history, rec)
		if rec.Err != "" {
			return Output{}, history, corexerr.Wrap(corexerr.Internal, "pipeline_stage_failed", "pipeline stage "+s.ID()+" failed", stageError{rec.Err})
		}
		last = out
		current = current.WithContext("previous_output", out.Content)
	}
	return last, history, nil
}

type stageError struct{ msg string }

func (e stageError) Error() string { return e.msg }

// FanOut invokes branches concurrently on the same input, then runs
// synthesis over the successful outputs. Synthesis proceeds if at
// least one branch succeeded; if every branch failed, FanOut fails.
func FanOut(ctx context.Context, branches []Specialist, synthesis Specialist, input Input) (Output, []StageRecord, error) {
	if len(branches) == 0 {
		return Output{}, nil, corexerr.Validationf("branches", "fan-out requires at least one branch")
	}

	history := make([]StageRecord, len(branches))
	outputs := make([]Output, len(branches))
	ok := make([]bool, len(branches))

	g := new(errgroup.Group)
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			out, rec := runStage(ctx, branch, input)
			history[i] = rec
			if rec.Err == "" {
				outputs[i] = out
				ok[i] = true
			}
			return nil
		})
	}
	_ = g.Wait() // branch errors are captured per-stage, never propagated as a group error

	successful := make([]string, 0, len(outputs))
	anySucceeded := false
	for i, succeeded := range ok {
		if succeeded {
			anySucceeded = true
			successful = append(successful, outputs[i].Content)
		}
	}
	if !anySucceeded {
		return Output{}, history, corexerr.New(corexerr.Internal, "fanout_all_failed", "every fan-out branch failed")
	}

	synthInput := input.WithContext("branch_outputs", successful)
	synthOut, synthRec := runStage(ctx, synthesis, synthInput)
	history = append(history, synthRec)
	if synthRec.Err != "" {
		return Output{}, history, corexerr.Wrap(corexerr.Internal, "fanout_synthesis_failed", "synthesis stage failed", stageError{synthRec.Err})
	}
	return synthOut, history, nil
}

// Gate runs a producer/verifier pair, feeding the verifier's reason
// back to the producer as additional context on failure, up to
// maxRetries additional attempts after the first.
func Gate(ctx context.Context, producer Specialist, verifier Verifier, maxRetries int, input Input) (Output, []StageRecord, error) {
	history := make([]StageRecord, 0, (maxRetries+1)*2)
	current := input

	for attempt := 0; attempt <= maxRetries; attempt++ {
		out, rec := runStage(ctx, producer, current)
		history = append(history, rec)
		if rec.Err != "" {
			return Output{}, history, corexerr.Wrap(corexerr.Internal, "gate_producer_failed", "gate producer failed", stageError{rec.Err})
		}

		verdict, err := verifier.Verify(ctx, out)
		history = append(history, StageRecord{SpecialistID: "verifier", Output: out})
		if err != nil {
			return Output{}, history, corexerr.Wrap(corexerr.Internal, "gate_verifier_failed", "gate verifier failed", err)
		}
		if verdict.Pass {
			return out, history, nil
		}
		current = current.WithContext("verifier_feedback", verdict.Reason)
	}
	return Output{}, history, corexerr.New(corexerr.Internal, "gate_retry_exhausted", "gate retry bound exhausted without a passing verdict")
}

// TDDLoop runs a builder/tester pair. The tester is authoritative; on
// failure the builder receives the test outcome and iterates, up to
// maxIterations attempts.
func TDDLoop(ctx context.Context, builder Specialist, tester Tester, maxIterations int, input Input) (Output, []StageRecord, error) {
	history := make([]StageRecord, 0, maxIterations*2)
	current := input

	for iteration := 0; iteration < maxIterations; iteration++ {
		out, rec := runStage(ctx, builder, current)
		history = append(history, rec)
		if rec.Err != "" {
			return Output{}, history, corexerr.Wrap(corexerr.Internal, "tddloop_builder_failed", "builder failed", stageError{rec.Err})
		}

		outcome, err := tester.Test(ctx, out)
		history = append(history, StageRecord{SpecialistID: "tester", Output: out})
		if err != nil {
			return Output{}, history, corexerr.Wrap(corexerr.Internal, "tddloop_tester_failed", "tester failed", err)
		}
		if outcome.Pass {
			return out, history, nil
		}
		current = current.WithContext("test_outcome", outcome.Details)
	}
	return Output{}, history, corexerr.New(corexerr.Internal, "tddloop_iteration_exhausted", "TDD loop iteration bound exhausted without tester pass")
}
