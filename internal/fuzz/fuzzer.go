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

// Package fuzz replays a flow with one of its request inputs replaced by the words of a list.
package fuzz

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asgardeo/raider/internal/flow/constants"
	"github.com/asgardeo/raider/internal/flow/model"
	"github.com/asgardeo/raider/internal/operation"
	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/session"
	"github.com/asgardeo/raider/internal/system/error/serviceerror"
	"github.com/asgardeo/raider/internal/system/log"
)

const loggerComponentName = "Fuzzer"

// Mode tells how a word is combined with the base value of the fuzzing point.
type Mode int

const (
	// ModeReplace sends the word alone.
	ModeReplace Mode = iota
	// ModePrepend sends the word followed by the base value.
	ModePrepend
	// ModeAppend sends the base value followed by the word.
	ModeAppend
)

// Processor wraps the payload plugin before it is sent, such as plugin.URLEncode.
type Processor func(*plugin.Plugin) *plugin.Plugin

// FlowRunnerInterface runs single flows against a session.
type FlowRunnerInterface interface {
	RunFlow(ctx context.Context, name string) (operation.Signal, *serviceerror.ServiceError)
	Session() *session.Session
}

// Result is the outcome of one word.
type Result struct {
	Word    string
	Payload string
	Status  int
	Signal  string
	Error   *serviceerror.ServiceError
}

// Fuzzer drives a flow once per word with the fuzzing point bound to the payload.
type Fuzzer struct {
	runner    FlowRunnerInterface
	graph     *model.FlowGraph
	flowName  string
	point     string
	mode      Mode
	processor Processor
	// OnResult is called after every word.
	OnResult func(Result)
}

// NewFuzzer creates a fuzzer for the named flow and fuzzing point.
func NewFuzzer(runner FlowRunnerInterface, graph *model.FlowGraph, flowName, point string, mode Mode,
	processor Processor) *Fuzzer {
	return &Fuzzer{
		runner:    runner,
		graph:     graph,
		flowName:  flowName,
		point:     point,
		mode:      mode,
		processor: processor,
	}
}

// Run sends the flow once per word. The fuzzing point is restored to its original strategy
// and value afterwards, also when the run stops early. Per word failures are recorded in the
// results; only cancellation stops the run.
func (f *Fuzzer) Run(ctx context.Context, words []string) ([]Result, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyFlowName, f.flowName))

	flow, ok := f.graph.GetFlow(f.flowName)
	if !ok {
		return nil, constants.ErrorFlowNotFound.WithDescription("flow not found: " + f.flowName)
	}
	point, ok := flow.Request().Lookup(f.point)
	if !ok {
		return nil, constants.ErrorFuzzingPointNotFound.WithDescription(
			fmt.Sprintf("flow %s has no input named %s", f.flowName, f.point))
	}

	strategy := point.Strategy()
	baseValue, _ := point.Value()
	defer func() {
		point.Rebind(strategy)
		point.SetValue(baseValue)
	}()

	base := ""
	if f.mode != ModeReplace {
		base = f.baseValue(ctx, point)
	}
	logger.Debug("Fuzzing", log.String("point", f.point), log.Int("words", len(words)))

	results := make([]Result, 0, len(words))
	for _, word := range words {
		if err := ctx.Err(); err != nil {
			return results, constants.ErrorRunCancelled.WithDescription(
				fmt.Sprintf("fuzzing flow %s cancelled: %s", f.flowName, err.Error()))
		}

		payload := f.payload(base, word)
		point.RebindToLiteral(payload)

		result := Result{Word: word, Payload: payload}
		signal, svcErr := f.runner.RunFlow(ctx, f.flowName)
		if svcErr != nil {
			logger.Warn("Fuzzing input failed", log.String("word", word),
				log.String("error", svcErr.ErrorDescription))
			result.Error = svcErr
		} else {
			result.Signal = signal.String()
		}
		if resp := flow.Response(); resp != nil && svcErr == nil {
			result.Status = resp.StatusCode
		}

		results = append(results, result)
		if f.OnResult != nil {
			f.OnResult(result)
		}
	}
	return results, nil
}

// baseValue is the value the fuzzing point had before fuzzing: the cached value, then the
// session, then a fresh resolution.
func (f *Fuzzer) baseValue(ctx context.Context, point *plugin.Plugin) string {
	if value, ok := point.Value(); ok {
		return value
	}
	sess := f.runner.Session()
	if sess != nil {
		if value, ok := sess.Get(point.Name()); ok {
			return value
		}
	}
	value, _, err := point.Resolve(&plugin.ResolveContext{Context: ctx, UserData: sess})
	if err != nil {
		return ""
	}
	return value
}

func (f *Fuzzer) payload(base, word string) string {
	var payload string
	switch f.mode {
	case ModePrepend:
		payload = word + base
	case ModeAppend:
		payload = base + word
	default:
		payload = word
	}
	if f.processor == nil {
		return payload
	}
	processed, ok, err := f.processor(plugin.Literal(f.point, payload)).Resolve(nil)
	if err != nil || !ok {
		return payload
	}
	return processed
}

// LoadWordlist reads one word per line, skipping empty lines.
func LoadWordlist(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if word := strings.TrimRight(scanner.Text(), "\r"); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// ParseProcessor returns the processor with the given name. The empty name means none.
func ParseProcessor(name string) (Processor, error) {
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "urlencode":
		return plugin.URLEncode, nil
	case "urldecode":
		return plugin.URLDecode, nil
	case "b64encode":
		return plugin.B64Encode, nil
	case "b64decode":
		return plugin.B64Decode, nil
	}
	return nil, fmt.Errorf("unknown processor %q", name)
}
