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

package constants

import (
	"github.com/asgardeo/raider/internal/system/error/serviceerror"
)

// Client error structs

// ErrorEmptyFlowChain is returned when a chain expression names no flow.
var ErrorEmptyFlowChain = serviceerror.ServiceError{
	Code:             "FES-60001",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "At least one flow or flow graph name is required",
}

// ErrorFlowNotFound is returned when a named flow does not exist.
var ErrorFlowNotFound = serviceerror.ServiceError{
	Code:             "FES-60002",
	Type:             serviceerror.ClientErrorType,
	Error:            "Flow not found",
	ErrorDescription: "The requested flow is not defined in the project",
}

// ErrorFlowGraphNotFound is returned when a named flow graph does not exist.
var ErrorFlowGraphNotFound = serviceerror.ServiceError{
	Code:             "FES-60003",
	Type:             serviceerror.ClientErrorType,
	Error:            "Flow graph not found",
	ErrorDescription: "The requested flow graph is not defined in the project",
}

// ErrorProjectNotFound is returned when a named project is not loaded.
var ErrorProjectNotFound = serviceerror.ServiceError{
	Code:             "FES-60004",
	Type:             serviceerror.ClientErrorType,
	Error:            "Project not found",
	ErrorDescription: "The requested project is not loaded",
}

// ErrorFuzzingPointNotFound is returned when a fuzzing point is not an input of the flow.
var ErrorFuzzingPointNotFound = serviceerror.ServiceError{
	Code:             "FES-60005",
	Type:             serviceerror.ClientErrorType,
	Error:            "Fuzzing point not found",
	ErrorDescription: "The fuzzing point is not an input of the flow request",
}

// Server error structs

// ErrorUndefinedTransition is returned when an operation names a missing flow, or a chain
// ends without a success or failure signal.
var ErrorUndefinedTransition = serviceerror.ServiceError{
	Code:             "FES-65001",
	Type:             serviceerror.ServerErrorType,
	Error:            "Undefined transition",
	ErrorDescription: "The flow graph moved to a flow that does not exist",
}

// ErrorTestContractViolation is returned when a test flow produces a non boolean signal.
var ErrorTestContractViolation = serviceerror.ServiceError{
	Code:             "FES-65002",
	Type:             serviceerror.ServerErrorType,
	Error:            "Test contract violation",
	ErrorDescription: "The test flow must end with a success or failure",
}

// ErrorTransportFailure is returned when a request could not be exchanged.
var ErrorTransportFailure = serviceerror.ServiceError{
	Code:             "FES-65003",
	Type:             serviceerror.ServerErrorType,
	Error:            "Transport failure",
	ErrorDescription: "The request could not be sent",
}

// ErrorMaterializationGap is returned when a request lacks a required field.
var ErrorMaterializationGap = serviceerror.ServiceError{
	Code:             "FES-65004",
	Type:             serviceerror.ServerErrorType,
	Error:            "Materialization gap",
	ErrorDescription: "The request is missing a required field",
}

// ErrorFlowGraphFailed is returned when a flow graph ends with a failure signal.
var ErrorFlowGraphFailed = serviceerror.ServiceError{
	Code:             "FES-65005",
	Type:             serviceerror.ServerErrorType,
	Error:            "Flow graph failed",
	ErrorDescription: "The flow graph ended with a failure",
}

// ErrorFlowFailed is returned when a plain flow of a chain ends with a failure signal.
var ErrorFlowFailed = serviceerror.ServiceError{
	Code:             "FES-65006",
	Type:             serviceerror.ServerErrorType,
	Error:            "Flow failed",
	ErrorDescription: "The flow ended with a failure",
}

// ErrorOperationFailed is returned when an operation could not run.
var ErrorOperationFailed = serviceerror.ServiceError{
	Code:             "FES-65007",
	Type:             serviceerror.ServerErrorType,
	Error:            "Operation failed",
	ErrorDescription: "An operation of the flow could not run",
}

// ErrorPluginContract is returned when a plugin is read outside of its resolution contract.
var ErrorPluginContract = serviceerror.ServiceError{
	Code:             "FES-65008",
	Type:             serviceerror.ServerErrorType,
	Error:            "Plugin contract violation",
	ErrorDescription: "A response bound plugin was read before any response was received",
}

// ErrorRunCancelled is returned when the context of a run is cancelled between flows.
var ErrorRunCancelled = serviceerror.ServiceError{
	Code:             "FES-65009",
	Type:             serviceerror.ServerErrorType,
	Error:            "Run cancelled",
	ErrorDescription: "The run was cancelled before the next flow started",
}
