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

// Package operation implements the post-response decision logic of a flow.
package operation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/prompt"
	httpservice "github.com/asgardeo/raider/internal/system/http"
	"github.com/asgardeo/raider/internal/system/log"
)

const loggerComponentName = "Operation"

// ErrResponseRequired is returned when an operation reading the response runs without one.
var ErrResponseRequired = errors.New("operation requires a response")

// Kind identifies the behaviour of an operation.
type Kind int

const (
	// KindStatusMatch checks the response status code.
	KindStatusMatch Kind = iota
	// KindBodyRegexMatch searches the response body.
	KindBodyRegexMatch
	// KindEqualityMatch compares two operands.
	KindEqualityMatch
	// KindSaveToFile writes a value or the body to a file.
	KindSaveToFile
	// KindPrintDebug prints values or parts of the response.
	KindPrintDebug
	// KindTerminalTransition moves to another flow.
	KindTerminalTransition
	// KindTerminalSuccess ends the run successfully.
	KindTerminalSuccess
	// KindTerminalFailure ends the run with a failure.
	KindTerminalFailure
)

var kindNames = map[Kind]string{
	KindStatusMatch:        "Http",
	KindBodyRegexMatch:     "Grep",
	KindEqualityMatch:      "Match",
	KindSaveToFile:         "Save",
	KindPrintDebug:         "Print",
	KindTerminalTransition: "Next",
	KindTerminalSuccess:    "Success",
	KindTerminalFailure:    "Failure",
}

// String returns the operation name used in project files and logs.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Env carries the collaborators available to operations while they run. UserData and
// Prompter are used to resolve the plugins an operation reads.
type Env struct {
	Context   context.Context
	Output    io.Writer
	OutputDir string
	FlowName  string
	UserData  plugin.UserDataInterface
	Prompter  prompt.PrompterInterface
}

func (e *Env) output() io.Writer {
	if e == nil || e.Output == nil {
		return os.Stdout
	}
	return e.Output
}

type checkFunc func(env *Env, resp *httpservice.Response) bool

type effectFunc func(env *Env, resp *httpservice.Response) error

// Operation is a node of the operation tree. Conditional operations dispatch exactly one of
// their branches; the others produce a signal or a side effect directly.
type Operation struct {
	kind          Kind
	needsResponse bool
	needsUserData bool
	conditional   bool
	description   string
	check         checkFunc
	effect        effectFunc
	action        []*Operation
	otherwise     []*Operation
	signal        Signal
	message       string
	plugins       []*plugin.Plugin
}

// Kind returns the operation kind.
func (o *Operation) Kind() Kind {
	return o.kind
}

// NeedsResponse reports whether the operation reads the response.
func (o *Operation) NeedsResponse() bool {
	return o.needsResponse
}

// NeedsUserData reports whether the operation reads plugin values.
func (o *Operation) NeedsUserData() bool {
	return o.needsUserData
}

// IsConditional reports whether the operation has branches.
func (o *Operation) IsConditional() bool {
	return o.conditional
}

// Then sets the branch run when the check holds.
func (o *Operation) Then(ops ...*Operation) *Operation {
	o.action = ops
	return o
}

// Otherwise sets the branch run when the check fails.
func (o *Operation) Otherwise(ops ...*Operation) *Operation {
	o.otherwise = ops
	return o
}

// Action returns the branch run when the check holds.
func (o *Operation) Action() []*Operation {
	return o.action
}

// OtherwiseBranch returns the branch run when the check fails.
func (o *Operation) OtherwiseBranch() []*Operation {
	return o.otherwise
}

// String renders the operation and its branches.
func (o *Operation) String() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(o.kind.String())
	if o.description != "" {
		b.WriteString(":")
		b.WriteString(o.description)
	}
	if o.conditional {
		b.WriteString("=")
		b.WriteString(listString(o.action))
		b.WriteString("/")
		b.WriteString(listString(o.otherwise))
	}
	b.WriteString(")")
	return b.String()
}

func listString(ops []*Operation) string {
	if len(ops) == 0 {
		return "None"
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Run evaluates the operation against a response.
func (o *Operation) Run(env *Env, resp *httpservice.Response) (Signal, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
	if env != nil && env.FlowName != "" {
		logger = logger.With(log.String(log.LoggerKeyFlowName, env.FlowName))
	}

	if o.needsResponse && resp == nil {
		return NoSignal(), fmt.Errorf("%w: %s", ErrResponseRequired, o)
	}

	if o.needsUserData {
		if err := o.resolvePlugins(env, resp); err != nil {
			return NoSignal(), fmt.Errorf("running %s: %w", o, err)
		}
	}

	if o.conditional {
		matched := o.check(env, resp)
		logger.Debug("Evaluated condition", log.String("operation", o.kind.String()),
			log.String("check", o.description), log.Bool("matched", matched))
		if matched {
			return RunList(env, resp, o.action)
		}
		return RunList(env, resp, o.otherwise)
	}

	if o.effect != nil {
		if err := o.effect(env, resp); err != nil {
			return NoSignal(), fmt.Errorf("running %s: %w", o, err)
		}
	}

	switch o.kind {
	case KindTerminalSuccess:
		if o.message != "" {
			logger.Info(o.message)
		}
	case KindTerminalFailure:
		if o.message != "" {
			logger.Error(o.message)
		}
	}
	return o.signal, nil
}

// resolvePlugins resolves the plugins read by the operation so that their values reflect the
// current user data and response.
func (o *Operation) resolvePlugins(env *Env, resp *httpservice.Response) error {
	rctx := &plugin.ResolveContext{Response: resp}
	if env != nil {
		rctx.Context = env.Context
		rctx.UserData = env.UserData
		rctx.Prompter = env.Prompter
	}
	for _, p := range o.plugins {
		if p == nil {
			continue
		}
		if _, _, err := p.Resolve(rctx); err != nil {
			return err
		}
	}
	return nil
}

// RunList evaluates operations in order and stops at the first one producing a signal.
func RunList(env *Env, resp *httpservice.Response, ops []*Operation) (Signal, error) {
	for _, op := range ops {
		signal, err := op.Run(env, resp)
		if err != nil {
			return NoSignal(), err
		}
		if !signal.IsNone() {
			return signal, nil
		}
	}
	return NoSignal(), nil
}

// Plugins lists the plugins read by the operation tree, each once.
func Plugins(ops []*Operation) []*plugin.Plugin {
	var out []*plugin.Plugin
	seen := make(map[*plugin.Plugin]bool)
	var walk func(ops []*Operation)
	walk = func(ops []*Operation) {
		for _, op := range ops {
			for _, p := range op.plugins {
				if p != nil && !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
			walk(op.action)
			walk(op.otherwise)
		}
	}
	walk(ops)
	return out
}
