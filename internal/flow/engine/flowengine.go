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

// Package engine provides the flow engine for executing flows and walking flow graphs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/asgardeo/raider/internal/flow/constants"
	"github.com/asgardeo/raider/internal/flow/model"
	"github.com/asgardeo/raider/internal/operation"
	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/prompt"
	"github.com/asgardeo/raider/internal/request"
	"github.com/asgardeo/raider/internal/session"
	"github.com/asgardeo/raider/internal/system/error/serviceerror"
	httpservice "github.com/asgardeo/raider/internal/system/http"
	"github.com/asgardeo/raider/internal/system/log"
	"github.com/asgardeo/raider/internal/system/metrics"
)

const loggerComponentName = "FlowEngine"

// FlowEngineInterface defines the interface for the flow engine.
type FlowEngineInterface interface {
	RunFlow(ctx context.Context, name string) (operation.Signal, *serviceerror.ServiceError)
	RunGraph(ctx context.Context, name string, withTest bool) (*GraphResult, *serviceerror.ServiceError)
	RunChain(ctx context.Context, chain string) (*ChainResult, *serviceerror.ServiceError)
}

// Options configures a FlowEngine.
type Options struct {
	Prompter  prompt.PrompterInterface
	UserAgent string
	Output    io.Writer
	OutputDir string
	// OnTransition is called after every transition between flows of a graph run.
	OnTransition func(from, to string)
}

// FlowEngine executes flows of one FlowGraph against one session. It is not safe for
// concurrent use; runs are strictly sequential.
type FlowEngine struct {
	graph        *model.FlowGraph
	session      *session.Session
	client       httpservice.HTTPClientInterface
	materializer *request.Materializer
	prompter     prompt.PrompterInterface
	options      Options
}

// NewFlowEngine creates an engine over the given graph and session.
func NewFlowEngine(graph *model.FlowGraph, sess *session.Session, client httpservice.HTTPClientInterface,
	opts Options) *FlowEngine {
	if opts.Prompter == nil {
		opts.Prompter = prompt.NonInteractivePrompter{}
	}
	if sess == nil {
		sess = session.NewSession("", "")
	}
	return &FlowEngine{
		graph:        graph,
		session:      sess,
		client:       client,
		materializer: request.NewMaterializer(opts.Prompter, opts.UserAgent),
		prompter:     opts.Prompter,
		options:      opts,
	}
}

// Session returns the session the engine reads from and writes to.
func (fe *FlowEngine) Session() *session.Session {
	return fe.session
}

// RunFlow executes a single flow by name and returns its raw signal.
func (fe *FlowEngine) RunFlow(ctx context.Context, name string) (operation.Signal, *serviceerror.ServiceError) {
	flow, ok := fe.graph.GetFlow(name)
	if !ok {
		return operation.NoSignal(), constants.ErrorFlowNotFound.WithDescription("flow not found: " + name)
	}
	return fe.executeFlow(ctx, flow, fe.newLogger(ctx))
}

// executeFlow runs one flow through its states: materialize and send, extract the outputs,
// then run the operations.
func (fe *FlowEngine) executeFlow(ctx context.Context, flow *model.Flow,
	logger *log.Logger) (operation.Signal, *serviceerror.ServiceError) {
	logger = logger.With(log.String(log.LoggerKeyFlowName, flow.Name()))
	logger.Debug("Executing flow")

	flow.Begin()
	plugin.ResetAll(flow.Plugins()...)

	concrete, err := fe.materializer.Materialize(ctx, flow.Request(), fe.session)
	if err != nil {
		return operation.NoSignal(), fe.classify(logger, flow, "materializing request", err)
	}
	req, err := concrete.Build(ctx)
	if err != nil {
		return operation.NoSignal(), fe.classify(logger, flow, "building request", err)
	}

	resp, err := httpservice.Send(fe.client, req)
	if err != nil {
		logger.Error("Transport failure", log.Error(err))
		return operation.NoSignal(), constants.ErrorTransportFailure.WithDescription(
			fmt.Sprintf("flow %s: %s", flow.Name(), err.Error()))
	}
	metrics.RecordHTTPResponse(req.Method, resp.StatusCode)
	logger.Debug("Received response", log.Int("status", resp.StatusCode), log.String("size", resp.Size()))
	if err := flow.MarkSent(resp); err != nil {
		return operation.NoSignal(), fe.classify(logger, flow, "recording response", err)
	}

	if err := fe.extractOutputs(ctx, flow, resp); err != nil {
		return operation.NoSignal(), fe.classify(logger, flow, "extracting outputs", err)
	}
	if err := flow.MarkOutputsExtracted(); err != nil {
		return operation.NoSignal(), fe.classify(logger, flow, "extracting outputs", err)
	}

	// Computed operands are recomputed over the values extracted from this response.
	plugin.ResetComputed(operation.Plugins(flow.Operations())...)
	env := &operation.Env{
		Context:   ctx,
		Output:    fe.options.Output,
		OutputDir: fe.options.OutputDir,
		FlowName:  flow.Name(),
		UserData:  fe.session,
		Prompter:  fe.prompter,
	}
	signal, err := operation.RunList(env, resp, flow.Operations())
	if err != nil {
		return operation.NoSignal(), fe.classify(logger, flow, "running operations", err)
	}
	if err := flow.MarkOperationsRun(); err != nil {
		return operation.NoSignal(), fe.classify(logger, flow, "running operations", err)
	}

	metrics.RecordFlowExecution(flow.Name())
	logger.Debug("Flow executed", log.String("signal", signal.String()))
	return signal, nil
}

// extractOutputs extracts every output from the response and merges the values into the
// session, classified by plugin kind.
func (fe *FlowEngine) extractOutputs(ctx context.Context, flow *model.Flow, resp *httpservice.Response) error {
	rctx := &plugin.ResolveContext{
		Context:  ctx,
		UserData: fe.session,
		Prompter: fe.prompter,
		Response: resp,
	}
	for _, output := range flow.Outputs() {
		var value string
		var ok bool
		if output.Policy() == plugin.PolicyFromResponse {
			if !output.ExtractFromResponse(resp) {
				continue
			}
			value, ok = output.Value()
		} else {
			var err error
			value, ok, err = output.Resolve(rctx)
			if err != nil {
				return err
			}
		}
		if !ok || value == "" {
			continue
		}
		if !output.NameResolved() {
			log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
				log.String(log.LoggerKeyFlowName, flow.Name())).
				Warn("Output name is unresolved, not storing it", log.String("pattern", output.Pattern()))
			continue
		}
		request.StoreValue(fe.session, output, value)
	}
	return nil
}

// classify maps an execution error to the fatal condition it represents.
func (fe *FlowEngine) classify(logger *log.Logger, flow *model.Flow, stage string,
	err error) *serviceerror.ServiceError {
	description := fmt.Sprintf("flow %s: %s: %s", flow.Name(), stage, err.Error())
	logger.Error("Flow execution failed", log.String("stage", stage), log.Error(err))

	switch {
	case errors.Is(err, request.ErrMissingURL), errors.Is(err, request.ErrMissingMethod),
		errors.Is(err, request.ErrUnsupportedMethod):
		return constants.ErrorMaterializationGap.WithDescription(description)
	case errors.Is(err, plugin.ErrNotExtracted):
		return constants.ErrorPluginContract.WithDescription(description)
	case errors.Is(err, operation.ErrResponseRequired):
		return constants.ErrorOperationFailed.WithDescription(description)
	case stage == "running operations":
		return constants.ErrorOperationFailed.WithDescription(description)
	default:
		return constants.ErrorMaterializationGap.WithDescription(description)
	}
}

func (fe *FlowEngine) newLogger(ctx context.Context) *log.Logger {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
	if runID, ok := RunIDFromContext(ctx); ok {
		logger = logger.With(log.String(log.LoggerKeyRunID, runID))
	}
	return logger
}

type runIDKey struct{}

// WithRunID attaches a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID attached to the context.
func RunIDFromContext(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey{}).(string)
	return runID, ok && runID != ""
}

func newRunID() string {
	return uuid.New().String()
}

func splitChain(chain string) []string {
	var names []string
	for _, name := range strings.Split(chain, constants.ChainSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
