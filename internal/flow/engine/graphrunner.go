/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/asgardeo/raider/internal/flow/constants"
	"github.com/asgardeo/raider/internal/system/error/serviceerror"
	"github.com/asgardeo/raider/internal/system/log"
	"github.com/asgardeo/raider/internal/system/metrics"
)

// GraphResult is the outcome of a successful flow graph run.
type GraphResult struct {
	RunID   string
	Graph   string
	Status  constants.GraphStatus
	Visited []string
	Test    constants.TestStatus
}

// ChainStepKind tells whether a chain step ran a flow or a flow graph.
type ChainStepKind string

const (
	// ChainStepFlow is a plain flow run by name.
	ChainStepFlow ChainStepKind = "flow"
	// ChainStepGraph is a flow graph walked from its start flow.
	ChainStepGraph ChainStepKind = "graph"
)

// ChainStep is the outcome of one element of a chain.
type ChainStep struct {
	Name   string
	Kind   ChainStepKind
	Signal string
	Graph  *GraphResult
}

// ChainResult is the outcome of a chain run.
type ChainResult struct {
	RunID string
	Steps []ChainStep
}

// RunGraph walks a flow graph from its start flow until a terminal signal. Transitions follow
// flow names; cycles are legal. With withTest the graph's test flow runs afterwards and must
// end with a success or failure, which is stored as the graph's completed flag.
func (fe *FlowEngine) RunGraph(ctx context.Context, name string,
	withTest bool) (*GraphResult, *serviceerror.ServiceError) {
	if _, ok := RunIDFromContext(ctx); !ok {
		ctx = WithRunID(ctx, newRunID())
	}
	runID, _ := RunIDFromContext(ctx)
	logger := fe.newLogger(ctx).With(log.String(log.LoggerKeyGraphName, name))

	graph, ok := fe.graph.GetGraph(name)
	if !ok {
		return nil, constants.ErrorFlowGraphNotFound.WithDescription("flow graph not found: " + name)
	}

	result := &GraphResult{RunID: runID, Graph: name, Test: constants.TestStatusNotRun}
	previous := ""
	current := graph.Start
	for {
		if err := ctx.Err(); err != nil {
			return nil, constants.ErrorRunCancelled.WithDescription(
				fmt.Sprintf("flow graph %s cancelled before flow %s: %s", name, current, err.Error()))
		}

		flow, ok := fe.graph.GetFlow(current)
		if !ok {
			logger.Error("Transition to an undefined flow", log.String("from", previous),
				log.String("to", current))
			metrics.RecordGraphOutcome(name, "undefined_transition")
			return nil, constants.ErrorUndefinedTransition.WithDescription(
				fmt.Sprintf("flow graph %s: flow %s moved to undefined flow %s", name, previous, current))
		}

		result.Visited = append(result.Visited, current)
		signal, svcErr := fe.executeFlow(ctx, flow, logger)
		if svcErr != nil {
			metrics.RecordGraphOutcome(name, "error")
			return nil, svcErr
		}

		switch {
		case signal.IsTransition():
			metrics.RecordTransition(current, signal.Next())
			if fe.options.OnTransition != nil {
				fe.options.OnTransition(current, signal.Next())
			}
			previous, current = current, signal.Next()
			continue
		case signal.IsTerminal() && !signal.Success():
			logger.Error("Flow graph didn't return success", log.String(log.LoggerKeyFlowName, current))
			metrics.RecordGraphOutcome(name, "failure")
			return nil, constants.ErrorFlowGraphFailed.WithDescription(
				fmt.Sprintf("flow graph %s: flow %s returned failure", name, current))
		case signal.IsNone():
			logger.Error("Flow ended without a transition", log.String(log.LoggerKeyFlowName, current))
			metrics.RecordGraphOutcome(name, "undefined_transition")
			return nil, constants.ErrorUndefinedTransition.WithDescription(
				fmt.Sprintf("flow graph %s: flow %s ended without a transition or result", name, current))
		}
		// terminal success
		break
	}

	result.Status = constants.GraphStatusSuccess
	metrics.RecordGraphOutcome(name, "success")
	logger.Info("Flow graph completed", log.Int("flows", len(result.Visited)))

	if withTest && graph.Test != "" {
		if svcErr := fe.runTest(ctx, name, graph.Test, result); svcErr != nil {
			return nil, svcErr
		}
		graph.Completed = result.Test == constants.TestStatusCompleted
	}
	return result, nil
}

func (fe *FlowEngine) runTest(ctx context.Context, graphName, testName string,
	result *GraphResult) *serviceerror.ServiceError {
	logger := fe.newLogger(ctx).With(log.String(log.LoggerKeyGraphName, graphName))
	flow, ok := fe.graph.GetFlow(testName)
	if !ok {
		return constants.ErrorUndefinedTransition.WithDescription(
			fmt.Sprintf("flow graph %s: test flow %s is not defined", graphName, testName))
	}

	signal, svcErr := fe.executeFlow(ctx, flow, logger)
	if svcErr != nil {
		return svcErr
	}
	if !signal.IsTerminal() {
		logger.Error("Test flow must return success or failure", log.String("signal", signal.String()))
		return constants.ErrorTestContractViolation.WithDescription(
			fmt.Sprintf("flow graph %s: test flow %s returned %q", graphName, testName, signal.String()))
	}

	if signal.Success() {
		result.Test = constants.TestStatusCompleted
	} else {
		result.Test = constants.TestStatusIncomplete
	}
	logger.Info("Flow graph test finished", log.String("completed", strconv.FormatBool(signal.Success())))
	return nil
}

// RunChain runs a comma separated list of flow and flow graph names in order. Graph names take
// precedence. A plain flow returning failure stops the chain.
func (fe *FlowEngine) RunChain(ctx context.Context, chain string) (*ChainResult, *serviceerror.ServiceError) {
	names := splitChain(chain)
	if len(names) == 0 {
		return nil, &constants.ErrorEmptyFlowChain
	}
	if _, ok := RunIDFromContext(ctx); !ok {
		ctx = WithRunID(ctx, newRunID())
	}
	runID, _ := RunIDFromContext(ctx)
	logger := fe.newLogger(ctx)

	result := &ChainResult{RunID: runID}
	for _, name := range names {
		if _, ok := fe.graph.GetGraph(name); ok {
			graphResult, svcErr := fe.RunGraph(ctx, name, false)
			if svcErr != nil {
				return nil, svcErr
			}
			result.Steps = append(result.Steps, ChainStep{Name: name, Kind: ChainStepGraph,
				Signal: string(graphResult.Status), Graph: graphResult})
			continue
		}

		flow, ok := fe.graph.GetFlow(name)
		if !ok {
			return nil, constants.ErrorFlowNotFound.WithDescription("flow or flow graph not found: " + name)
		}
		signal, svcErr := fe.executeFlow(ctx, flow, logger)
		if svcErr != nil {
			return nil, svcErr
		}
		if signal.IsTerminal() && !signal.Success() {
			return nil, constants.ErrorFlowFailed.WithDescription(
				fmt.Sprintf("flow %s returned failure", name))
		}
		result.Steps = append(result.Steps, ChainStep{Name: name, Kind: ChainStepFlow, Signal: signal.String()})
	}
	return result, nil
}

var _ FlowEngineInterface = (*FlowEngine)(nil)
