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

// Package constants defines the constants used by the flow model, loader and engine.
package constants

// GraphStatus is the outcome of a flow graph run.
type GraphStatus string

const (
	// GraphStatusSuccess indicates that the chain ended with a success signal.
	GraphStatusSuccess GraphStatus = "SUCCESS"
	// GraphStatusFailure indicates that the chain ended with a failure signal.
	GraphStatusFailure GraphStatus = "FAILURE"
)

// TestStatus is the outcome of a graph's test flow.
type TestStatus string

const (
	// TestStatusNotRun indicates that the test flow was not requested or not defined.
	TestStatusNotRun TestStatus = "NOT_RUN"
	// TestStatusCompleted indicates that the test flow confirmed the authenticated state.
	TestStatusCompleted TestStatus = "COMPLETED"
	// TestStatusIncomplete indicates that the test flow reported a missing authenticated state.
	TestStatusIncomplete TestStatus = "INCOMPLETE"
)

// ChainSeparator separates flow and graph names in a chain expression.
const ChainSeparator = ","

// ProjectFileExtensions are the file extensions loaded from a project directory.
var ProjectFileExtensions = []string{".yaml", ".yml"}

// PluginReferencePrefix marks a plugin reference inside project definitions.
const PluginReferencePrefix = "$"
