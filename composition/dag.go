// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package composition

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"agentcore/platform/corexerr"
)

// Task is one node of a goal planner's DAG: a specialist assignment
// plus the set of task IDs it depends on.
type Task struct {
	ID         string
	Specialist Specialist
	DependsOn  []string
}

// Scheduler executes a DAG of tasks in topologically sorted layers:
// every task whose dependencies have completed runs concurrently within
// the current layer, and the next layer starts only once the current
// one has fully completed.
type Scheduler struct{}

// NewScheduler constructs a Scheduler. It holds no state; it exists so
// the type mirrors the other components' constructor convention.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Run validates the DAG for cycles, then executes it layer by layer,
// returning each task's output keyed by task ID plus the combined stage
// history in execution order. A cycle produces a VALIDATION error
// before any task runs.
func (s *Scheduler) Run(ctx context.Context, tasks []Task, input Input) (map[string]Output, []StageRecord, error) {
	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	layers, err := layer(tasks)
	if err != nil {
		return nil, nil, err
	}

	outputs := make(map[string]Output, len(tasks))
	var history []StageRecord
	var mu sync.Mutex

	for _, layerIDs := range layers {
		g := new(errgroup.Group)
		for _, id := range layerIDs {
			id := id
			g.Go(func() error {
				task := byID[id]
				taskInput := input
				if len(task.DependsOn) > 0 {
					deps := make(map[string]interface{}, len(task.DependsOn))
					mu.Lock()
					for _, dep := range task.DependsOn {
						deps[dep] = outputs[dep].Content
					}
					mu.Unlock()
					taskInput = input.WithContext("dependency_outputs", deps)
				}

				out, rec := runStage(ctx, task.Specialist, taskInput)

				mu.Lock()
				outputs[id] = out
				history = append(history, rec)
				mu.Unlock()

				if rec.Err != "" {
					return corexerr.Wrap(corexerr.Internal, "dag_task_failed", "task "+id+" failed", stageError{rec.Err})
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return outputs, history, err
		}
	}

	return outputs, history, nil
}

// layer performs Kahn's algorithm topological layering and detects
// cycles. Each returned slice is one layer: task IDs whose dependencies
// were all satisfied by prior layers.
func layer(tasks []Task) ([][]string, error) {
	indegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	ids := make(map[string]struct{}, len(tasks))

	for _, t := range tasks {
		ids[t.ID] = struct{}{}
		if _, ok := indegree[t.ID]; !ok {
			indegree[t.ID] = 0
		}
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := ids[dep]; !ok {
				return nil, corexerr.Validationf("depends_on", "task %q depends on unknown task %q", t.ID, dep)
			}
			indegree[t.ID]++
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var layers [][]string
	remaining := len(tasks)
	current := make([]string, 0)
	for id, deg := range indegree {
		if deg == 0 {
			current = append(current, id)
		}
	}

	for len(current) > 0 {
		layers = append(layers, current)
		remaining -= len(current)
		var next []string
		for _, id := range current {
			for _, dep := range dependents[id] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		current = next
	}

	if remaining != 0 {
		return nil, corexerr.Validationf("depends_on", "task dependency graph contains a cycle")
	}
	return layers, nil
}
