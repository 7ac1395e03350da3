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

package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Graph is a named entry point into the flows of a FlowGraph.
type Graph struct {
	Name      string
	Start     string
	Test      string
	Completed bool
}

// FlowGraphInterface defines the flow graph structure.
type FlowGraphInterface interface {
	AddFlow(flow *Flow) error
	AddGraph(graph *Graph) error
	GetFlow(name string) (*Flow, bool)
	GetGraph(name string) (*Graph, bool)
	FlowNames() []string
	GraphNames() []string
	ToJSON() (string, error)
}

// FlowGraph holds flows indexed by name and the graphs defined over them.
type FlowGraph struct {
	ID         string
	flows      map[string]*Flow
	flowOrder  []string
	graphs     map[string]*Graph
	graphOrder []string
}

// NewFlowGraph creates an empty FlowGraph.
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{
		ID:     uuid.New().String(),
		flows:  make(map[string]*Flow),
		graphs: make(map[string]*Graph),
	}
}

// AddFlow registers a flow. Flow names are unique.
func (g *FlowGraph) AddFlow(flow *Flow) error {
	if _, exists := g.flows[flow.Name()]; exists {
		return fmt.Errorf("flow %s is already defined", flow.Name())
	}
	g.flows[flow.Name()] = flow
	g.flowOrder = append(g.flowOrder, flow.Name())
	return nil
}

// AddGraph registers a graph. Its start and test flows must already exist.
func (g *FlowGraph) AddGraph(graph *Graph) error {
	if graph.Name == "" {
		return fmt.Errorf("flow graph name is required")
	}
	if _, exists := g.graphs[graph.Name]; exists {
		return fmt.Errorf("flow graph %s is already defined", graph.Name)
	}
	if _, ok := g.flows[graph.Start]; !ok {
		return fmt.Errorf("flow graph %s starts at undefined flow %q", graph.Name, graph.Start)
	}
	if graph.Test != "" {
		if _, ok := g.flows[graph.Test]; !ok {
			return fmt.Errorf("flow graph %s tests with undefined flow %q", graph.Name, graph.Test)
		}
	}
	g.graphs[graph.Name] = graph
	g.graphOrder = append(g.graphOrder, graph.Name)
	return nil
}

// GetFlow returns the flow with the given name.
func (g *FlowGraph) GetFlow(name string) (*Flow, bool) {
	flow, ok := g.flows[name]
	return flow, ok
}

// GetGraph returns the graph with the given name.
func (g *FlowGraph) GetGraph(name string) (*Graph, bool) {
	graph, ok := g.graphs[name]
	return graph, ok
}

// FlowNames returns the flow names in definition order.
func (g *FlowGraph) FlowNames() []string {
	return append([]string(nil), g.flowOrder...)
}

// GraphNames returns the graph names in definition order.
func (g *FlowGraph) GraphNames() []string {
	return append([]string(nil), g.graphOrder...)
}

// ToJSON converts the flow graph to a JSON string representation.
func (g *FlowGraph) ToJSON() (string, error) {
	type JSONFlow struct {
		Name       string   `json:"name"`
		Method     string   `json:"method"`
		Outputs    []string `json:"outputs,omitempty"`
		Operations []string `json:"operations,omitempty"`
	}
	type JSONGraph struct {
		Name  string `json:"name"`
		Start string `json:"start"`
		Test  string `json:"test,omitempty"`
	}
	type JSONFlowGraph struct {
		ID     string      `json:"id"`
		Flows  []JSONFlow  `json:"flows"`
		Graphs []JSONGraph `json:"graphs"`
	}

	out := JSONFlowGraph{ID: g.ID, Flows: []JSONFlow{}, Graphs: []JSONGraph{}}
	for _, name := range g.flowOrder {
		flow := g.flows[name]
		jsonFlow := JSONFlow{Name: name, Method: flow.Request().Method()}
		for _, p := range flow.Outputs() {
			jsonFlow.Outputs = append(jsonFlow.Outputs, p.Name())
		}
		for _, op := range flow.Operations() {
			jsonFlow.Operations = append(jsonFlow.Operations, op.String())
		}
		out.Flows = append(out.Flows, jsonFlow)
	}
	for _, name := range g.graphOrder {
		graph := g.graphs[name]
		out.Graphs = append(out.Graphs, JSONGraph{Name: name, Start: graph.Start, Test: graph.Test})
	}

	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}
