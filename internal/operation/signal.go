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

package operation

import "strconv"

type signalKind int

const (
	signalNone signalKind = iota
	signalTransition
	signalTerminal
)

// Signal is the result of running operations: nothing, the name of the next flow, or a
// terminal success or failure.
type Signal struct {
	kind    signalKind
	next    string
	success bool
}

// NoSignal is the empty result that lets evaluation continue.
func NoSignal() Signal {
	return Signal{}
}

// TransitionTo creates a transition to the named flow. An empty name means no transition.
func TransitionTo(name string) Signal {
	if name == "" {
		return Signal{}
	}
	return Signal{kind: signalTransition, next: name}
}

// Terminal creates a terminal signal.
func Terminal(success bool) Signal {
	return Signal{kind: signalTerminal, success: success}
}

// IsNone reports whether the signal carries no result.
func (s Signal) IsNone() bool {
	return s.kind == signalNone
}

// IsTransition reports whether the signal names a next flow.
func (s Signal) IsTransition() bool {
	return s.kind == signalTransition
}

// IsTerminal reports whether the signal is a success or failure.
func (s Signal) IsTerminal() bool {
	return s.kind == signalTerminal
}

// Next returns the target flow of a transition.
func (s Signal) Next() string {
	return s.next
}

// Success returns the outcome of a terminal signal.
func (s Signal) Success() bool {
	return s.success
}

// String returns the flow name, "true", "false" or "none".
func (s Signal) String() string {
	switch s.kind {
	case signalTransition:
		return s.next
	case signalTerminal:
		return strconv.FormatBool(s.success)
	default:
		return "none"
	}
}
