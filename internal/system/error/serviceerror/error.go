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

// Package serviceerror defines the error structures shared by the engine and its callers.
package serviceerror

import "fmt"

// ServiceErrorType defines the type of service error.
type ServiceErrorType string

const (
	// ClientErrorType denotes an error caused by the caller's input, such as an unknown flow name.
	ClientErrorType ServiceErrorType = "client_error"
	// ServerErrorType denotes an error raised while executing a run.
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError defines a generic error structure that can be used across the engine layer.
type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

// WithDescription returns a copy of the error carrying the given description.
func (e ServiceError) WithDescription(description string) *ServiceError {
	e.ErrorDescription = description
	return &e
}

// String renders the error as a single diagnostic line.
func (e *ServiceError) String() string {
	if e.ErrorDescription == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Error)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Error, e.ErrorDescription)
}
