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

// Package metrics exposes the prometheus counters recorded while flows execute.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flowExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raider_flow_executions_total",
			Help: "Count of flow executions by flow name.",
		},
		[]string{"flow"},
	)

	flowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raider_flow_transitions_total",
			Help: "Count of transitions followed between flows.",
		},
		[]string{"from", "to"},
	)

	graphOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raider_graph_outcomes_total",
			Help: "Count of flow graph runs by outcome.",
		},
		[]string{"graph", "outcome"},
	)

	httpResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raider_http_responses_total",
			Help: "Count of HTTP responses received by method and status.",
		},
		[]string{"method", "status"},
	)

	extractionMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raider_plugin_extraction_misses_total",
			Help: "Count of plugin extractions that produced no value.",
		},
		[]string{"plugin"},
	)
)

// RecordFlowExecution counts one execution of the named flow.
func RecordFlowExecution(flow string) {
	flowExecutions.WithLabelValues(flow).Inc()
}

// RecordTransition counts a transition from one flow to another.
func RecordTransition(from, to string) {
	flowTransitions.WithLabelValues(from, to).Inc()
}

// RecordGraphOutcome counts a finished graph run by outcome, such as "success" or "failure".
func RecordGraphOutcome(graph, outcome string) {
	graphOutcomes.WithLabelValues(graph, outcome).Inc()
}

// RecordHTTPResponse counts a received response.
func RecordHTTPResponse(method string, status int) {
	httpResponses.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// RecordExtractionMiss counts a plugin that could not extract its value.
func RecordExtractionMiss(plugin string) {
	extractionMisses.WithLabelValues(plugin).Inc()
}

// FlowExecutions returns the counter child for a flow, for inspection.
func FlowExecutions(flow string) prometheus.Counter {
	return flowExecutions.WithLabelValues(flow)
}

// Transitions returns the counter child for a transition, for inspection.
func Transitions(from, to string) prometheus.Counter {
	return flowTransitions.WithLabelValues(from, to)
}

// GraphOutcomes returns the counter child for a graph outcome, for inspection.
func GraphOutcomes(graph, outcome string) prometheus.Counter {
	return graphOutcomes.WithLabelValues(graph, outcome)
}

// HTTPResponses returns the counter child for a method and status, for inspection.
func HTTPResponses(method string, status int) prometheus.Counter {
	return httpResponses.WithLabelValues(method, strconv.Itoa(status))
}

// ExtractionMisses returns the counter child for a plugin, for inspection.
func ExtractionMisses(plugin string) prometheus.Counter {
	return extractionMisses.WithLabelValues(plugin)
}
