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

// Package plugin implements lazily resolved values with an explicit extraction policy.
//
// A Plugin produces its value in one of four ways: a stored literal, a lookup in the user
// context, an extraction from an HTTP response, or a computation over the values of other
// plugins. Computed values are memoized for one execution pass; Reset starts a new pass.
package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/asgardeo/raider/internal/prompt"
	httpservice "github.com/asgardeo/raider/internal/system/http"
	"github.com/asgardeo/raider/internal/system/log"
	"github.com/asgardeo/raider/internal/system/metrics"
)

const loggerComponentName = "Plugin"

// ErrNotExtracted is returned when a response-bound plugin is read before any response
// produced its value.
var ErrNotExtracted = errors.New("plugin value is only available after extraction from a response")

// Policy is the source a plugin takes its value from.
type Policy int

const (
	// PolicyLiteral returns the stored value.
	PolicyLiteral Policy = iota
	// PolicyFromUserData looks the plugin name up in the user context.
	PolicyFromUserData
	// PolicyFromResponse extracts the value from an HTTP response.
	PolicyFromResponse
	// PolicyFromOtherPlugins computes the value from the plugin's dependencies.
	PolicyFromOtherPlugins
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyLiteral:
		return "Literal"
	case PolicyFromUserData:
		return "FromUserData"
	case PolicyFromResponse:
		return "FromResponse"
	case PolicyFromOtherPlugins:
		return "FromOtherPlugins"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// OutputKind classifies where a resolved value is stored in the session.
type OutputKind int

const (
	// OutputKindData values go to the generic data namespace.
	OutputKindData OutputKind = iota
	// OutputKindCookie values go to the cookie namespace.
	OutputKindCookie
	// OutputKindHeader values go to the header namespace.
	OutputKindHeader
)

// String returns the human readable kind, as used in prompts.
func (k OutputKind) String() string {
	switch k {
	case OutputKindCookie:
		return "Cookie"
	case OutputKindHeader:
		return "Header"
	default:
		return "Plugin"
	}
}

// UserDataInterface is the read side of the user context.
type UserDataInterface interface {
	Get(name string) (string, bool)
}

// ResolveContext carries the collaborators available while resolving a plugin.
// Response is only set during the extraction phase that follows an exchange.
type ResolveContext struct {
	Context  context.Context
	UserData UserDataInterface
	Prompter prompt.PrompterInterface
	Response *httpservice.Response
}

// ResponseFunc reads a value, or a name, from a response.
type ResponseFunc func(resp *httpservice.Response) (string, bool)

// ComputeFunc derives a value from the resolved values of the plugin's dependencies,
// given in declaration order. Absent dependencies are passed as empty strings.
type ComputeFunc func(rctx *ResolveContext, inputs []string) (string, bool)

// Strategy describes how a plugin obtains its value. Extract is used by PolicyFromResponse,
// Compute by PolicyFromOtherPlugins. ExtractName is set when the name is not known in advance.
type Strategy struct {
	Policy      Policy
	Extract     ResponseFunc
	ExtractName ResponseFunc
	Compute     ComputeFunc
}

// Plugin is a named, lazily resolved value.
type Plugin struct {
	name         string
	pattern      string
	kind         OutputKind
	strategy     Strategy
	dependencies []*Plugin
	value        string
	hasValue     bool
	resolved     bool
	// extracted is set once a response was offered to the plugin and survives Reset.
	extracted bool
}

// New creates a plugin with an explicit strategy. Dependencies are non-owning references
// resolved, in order, before Compute runs.
func New(name string, kind OutputKind, strategy Strategy, dependencies ...*Plugin) *Plugin {
	p := &Plugin{
		name:         name,
		kind:         kind,
		strategy:     strategy,
		dependencies: dependencies,
	}
	if strategy.ExtractName != nil {
		p.pattern = name
	}
	return p
}

// Name returns the plugin name. For plugins whose name is not known in advance this is the
// matching pattern until a response revealed the real name.
func (p *Plugin) Name() string {
	return p.name
}

// Pattern returns the pattern a name-not-known-in-advance plugin matches with.
func (p *Plugin) Pattern() string {
	return p.pattern
}

// Kind returns the output classification of the plugin.
func (p *Plugin) Kind() OutputKind {
	return p.kind
}

// Policy returns the current extraction policy.
func (p *Plugin) Policy() Policy {
	return p.strategy.Policy
}

// NameKnownInAdvance reports whether the name is fixed at definition time.
func (p *Plugin) NameKnownInAdvance() bool {
	return p.strategy.ExtractName == nil
}

// NameResolved reports whether the real name is known, either in advance or from a response.
func (p *Plugin) NameResolved() bool {
	return p.NameKnownInAdvance() || p.name != p.pattern
}

// Dependencies returns the direct dependencies of the plugin.
func (p *Plugin) Dependencies() []*Plugin {
	return p.dependencies
}

// Value returns the cached value, if any.
func (p *Plugin) Value() (string, bool) {
	return p.value, p.hasValue
}

// SetValue stores a value from outside, such as a loaded session. An empty value clears it.
func (p *Plugin) SetValue(value string) {
	p.value = value
	p.hasValue = value != ""
}

// Reset starts a new execution pass. Computed and user data values are forgotten; values
// extracted from earlier responses and literals are kept.
func (p *Plugin) Reset() {
	p.resolved = false
	switch p.strategy.Policy {
	case PolicyFromUserData, PolicyFromOtherPlugins:
		p.value = ""
		p.hasValue = false
	}
}

// Rebind replaces the extraction strategy. It is the only way to change how a plugin obtains
// its value after construction; the memoized state is dropped.
func (p *Plugin) Rebind(strategy Strategy) {
	p.strategy = strategy
	p.resolved = false
	if strategy.ExtractName == nil {
		p.pattern = ""
	} else if p.pattern == "" {
		p.pattern = p.name
	}
}

// RebindToUserData makes the plugin read the given name from the user context.
func (p *Plugin) RebindToUserData(name string) {
	p.name = name
	p.Rebind(Strategy{Policy: PolicyFromUserData})
	p.value = ""
	p.hasValue = false
}

// RebindToLiteral makes the plugin return a fixed value.
func (p *Plugin) RebindToLiteral(value string) {
	p.Rebind(Strategy{Policy: PolicyLiteral})
	p.SetValue(value)
}

// Strategy returns the current strategy, so that a caller can restore it after a rebind.
func (p *Plugin) Strategy() Strategy {
	return p.strategy
}

// Resolve returns the plugin value. Absent values are reported with false and are never an
// error; the error return is reserved for contract violations.
func (p *Plugin) Resolve(rctx *ResolveContext) (string, bool, error) {
	switch p.strategy.Policy {
	case PolicyLiteral:
		return p.value, p.hasValue, nil
	case PolicyFromResponse:
		if rctx != nil && rctx.Response != nil && !p.resolved {
			p.ExtractFromResponse(rctx.Response)
		}
		if !p.hasValue && !p.extracted {
			return "", false, fmt.Errorf("%w: %s", ErrNotExtracted, p.name)
		}
		return p.value, p.hasValue, nil
	case PolicyFromUserData:
		if !p.resolved {
			p.resolveFromUserData(rctx)
		}
		return p.value, p.hasValue, nil
	case PolicyFromOtherPlugins:
		if !p.resolved {
			if err := p.resolveFromDependencies(rctx); err != nil {
				return "", false, err
			}
		}
		return p.value, p.hasValue, nil
	default:
		return "", false, fmt.Errorf("plugin %s has unsupported policy %s", p.name, p.strategy.Policy)
	}
}

// ExtractFromResponse runs the response extraction of the plugin: first the value, then the
// real name when it is not known in advance. The cached value is replaced only on a hit.
// It reports whether this response produced a value.
func (p *Plugin) ExtractFromResponse(resp *httpservice.Response) bool {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyPluginName, p.name))

	p.resolved = true
	if resp == nil {
		return false
	}
	p.extracted = true
	if p.strategy.Extract == nil {
		return false
	}

	value, ok := p.strategy.Extract(resp)
	if !ok || value == "" {
		logger.Warn("Couldn't extract output")
		metrics.RecordExtractionMiss(p.name)
		return false
	}
	p.value = value
	p.hasValue = true
	logger.Debug("Extracted output", log.String("value", value))

	if p.strategy.ExtractName != nil {
		name, ok := p.strategy.ExtractName(resp)
		if !ok || name == "" {
			logger.Error("Couldn't resolve the name of the output, keeping the matching pattern",
				log.String("pattern", p.pattern))
			return true
		}
		p.name = name
	}
	return true
}

func (p *Plugin) resolveFromUserData(rctx *ResolveContext) {
	p.resolved = true
	p.value = ""
	p.hasValue = false
	if rctx == nil || rctx.UserData == nil {
		return
	}
	value, ok := rctx.UserData.Get(p.name)
	if !ok || value == "" {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Warn("Value not found in user data", log.String(log.LoggerKeyPluginName, p.name))
		metrics.RecordExtractionMiss(p.name)
		return
	}
	p.value = value
	p.hasValue = true
}

func (p *Plugin) resolveFromDependencies(rctx *ResolveContext) error {
	inputs := make([]string, len(p.dependencies))
	for i, dependency := range p.dependencies {
		value, _, err := dependency.Resolve(rctx)
		if err != nil {
			return fmt.Errorf("resolving dependency of %s: %w", p.name, err)
		}
		inputs[i] = value
	}

	p.resolved = true
	p.value = ""
	p.hasValue = false
	if p.strategy.Compute == nil {
		return nil
	}
	value, ok := p.strategy.Compute(rctx, inputs)
	if ok && value != "" {
		p.value = value
		p.hasValue = true
	}
	return nil
}

// ResetComputed resets the computed plugins among the given ones and their dependencies, so
// that they are computed again over the latest extracted values.
func ResetComputed(plugins ...*Plugin) {
	visited := make(map[*Plugin]bool)
	var walk func(p *Plugin)
	walk = func(p *Plugin) {
		if p == nil || visited[p] {
			return
		}
		visited[p] = true
		if p.strategy.Policy == PolicyFromOtherPlugins {
			p.Reset()
		}
		for _, dependency := range p.dependencies {
			walk(dependency)
		}
	}
	for _, p := range plugins {
		walk(p)
	}
}

// ResetAll resets the given plugins and everything they depend on. Shared dependencies are
// reset once.
func ResetAll(plugins ...*Plugin) {
	visited := make(map[*Plugin]bool)
	var walk func(p *Plugin)
	walk = func(p *Plugin) {
		if p == nil || visited[p] {
			return
		}
		visited[p] = true
		p.Reset()
		for _, dependency := range p.dependencies {
			walk(dependency)
		}
	}
	for _, p := range plugins {
		walk(p)
	}
}
