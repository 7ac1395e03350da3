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

// Package model defines flows and flow graphs.
package model

import (
	"errors"
	"fmt"

	"github.com/asgardeo/raider/internal/operation"
	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/request"
	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// FlowState is the progress of one flow execution.
type FlowState string

const (
	// FlowStateNotStarted indicates that the flow has not sent its request in this run.
	FlowStateNotStarted FlowState = "NOT_STARTED"
	// FlowStateSent indicates that the response has been received.
	FlowStateSent FlowState = "SENT"
	// FlowStateOutputsExtracted indicates that the outputs have been extracted.
	FlowStateOutputsExtracted FlowState = "OUTPUTS_EXTRACTED"
	// FlowStateOperationsRun indicates that the operations have produced a signal.
	FlowStateOperationsRun FlowState = "OPERATIONS_RUN"
)

var errInvalidStateTransition = errors.New("invalid flow state transition")

// Flow is one HTTP exchange with its output extraction and decision logic.
type Flow struct {
	name       string
	request    *request.Template
	outputs    []*plugin.Plugin
	operations []*operation.Operation
	state      FlowState
	response   *httpservice.Response
}

// NewFlow creates a flow. The name and request are required.
func NewFlow(name string, req *request.Template, outputs []*plugin.Plugin,
	operations []*operation.Operation) (*Flow, error) {
	if name == "" {
		return nil, errors.New("flow name is required")
	}
	if req == nil {
		return nil, fmt.Errorf("flow %s: %w", name, request.ErrMissingURL)
	}
	return &Flow{
		name:       name,
		request:    req,
		outputs:    outputs,
		operations: operations,
		state:      FlowStateNotStarted,
	}, nil
}

// Name returns the flow name.
func (f *Flow) Name() string {
	return f.name
}

// Request returns the request template.
func (f *Flow) Request() *request.Template {
	return f.request
}

// Outputs returns the plugins extracted from the response.
func (f *Flow) Outputs() []*plugin.Plugin {
	return f.outputs
}

// Operations returns the operation list run after extraction.
func (f *Flow) Operations() []*operation.Operation {
	return f.operations
}

// State returns the execution state.
func (f *Flow) State() FlowState {
	return f.state
}

// Response returns the response of the last execution.
func (f *Flow) Response() *httpservice.Response {
	return f.response
}

// Begin starts a new execution, dropping the previous response.
func (f *Flow) Begin() {
	f.state = FlowStateNotStarted
	f.response = nil
}

// MarkSent records the response of the current execution.
func (f *Flow) MarkSent(resp *httpservice.Response) error {
	if err := f.advance(FlowStateNotStarted, FlowStateSent); err != nil {
		return err
	}
	f.response = resp
	return nil
}

// MarkOutputsExtracted records that the outputs have been extracted.
func (f *Flow) MarkOutputsExtracted() error {
	return f.advance(FlowStateSent, FlowStateOutputsExtracted)
}

// MarkOperationsRun records that the operations have run.
func (f *Flow) MarkOperationsRun() error {
	return f.advance(FlowStateOutputsExtracted, FlowStateOperationsRun)
}

func (f *Flow) advance(from, to FlowState) error {
	if f.state != from {
		return fmt.Errorf("%w: flow %s is %s, cannot move to %s", errInvalidStateTransition,
			f.name, f.state, to)
	}
	f.state = to
	return nil
}

// Plugins lists every plugin the flow touches: request inputs, outputs and operation operands.
func (f *Flow) Plugins() []*plugin.Plugin {
	var out []*plugin.Plugin
	seen := make(map[*plugin.Plugin]bool)
	add := func(ps []*plugin.Plugin) {
		for _, p := range ps {
			if p != nil && !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	add(f.request.Inputs())
	add(f.outputs)
	add(operation.Plugins(f.operations))
	return out
}
