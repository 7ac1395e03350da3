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

// Package definition provides the structure of a project file and builds flow graphs from it.
package definition

import (
	yaml "gopkg.in/yaml.v3"
)

// ProjectDefinition represents the direct project structure from YAML.
type ProjectDefinition struct {
	Name    string             `yaml:"name"`
	Users   []UserDefinition   `yaml:"users"`
	Plugins []PluginDefinition `yaml:"plugins"`
	Flows   []FlowDefinition   `yaml:"flows"`
	Graphs  []GraphDefinition  `yaml:"graphs"`
}

// UserDefinition represents one identity the project can authenticate as.
type UserDefinition struct {
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Data     map[string]string `yaml:"data,omitempty"`
}

// PluginDefinition represents a named plugin. Fields that reference other plugins use the
// "$name" form.
type PluginDefinition struct {
	Name       string             `yaml:"name"`
	Type       string             `yaml:"type"`
	Value      string             `yaml:"value,omitempty"`
	Pattern    string             `yaml:"pattern,omitempty"`
	Path       string             `yaml:"path,omitempty"`
	Tag        string             `yaml:"tag,omitempty"`
	Attributes map[string]string  `yaml:"attributes,omitempty"`
	Extract    string             `yaml:"extract,omitempty"`
	From       string             `yaml:"from,omitempty"`
	Command    string             `yaml:"command,omitempty"`
	File       string             `yaml:"file,omitempty"`
	Replace    *ReplaceDefinition `yaml:"replace,omitempty"`
	Username   string             `yaml:"username,omitempty"`
	Password   string             `yaml:"password,omitempty"`
	Token      string             `yaml:"token,omitempty"`
	UserData   bool               `yaml:"user_data,omitempty"`
}

// ReplaceDefinition substitutes a marker of a file plugin with the value of another plugin.
type ReplaceDefinition struct {
	Old  string `yaml:"old"`
	With string `yaml:"with"`
}

// FlowDefinition represents one flow. A flow extending another inherits its request and
// overrides the fields it sets.
type FlowDefinition struct {
	Name       string                `yaml:"name"`
	Extends    string                `yaml:"extends,omitempty"`
	Request    RequestDefinition     `yaml:"request"`
	Outputs    []string              `yaml:"outputs,omitempty"`
	Operations []OperationDefinition `yaml:"operations,omitempty"`
}

// RequestDefinition represents a request template. Body keeps the YAML node so that the
// entry order of the mapping survives decoding.
type RequestDefinition struct {
	Method   string    `yaml:"method"`
	URL      string    `yaml:"url"`
	Cookies  []string  `yaml:"cookies,omitempty"`
	Headers  []string  `yaml:"headers,omitempty"`
	BodyKind string    `yaml:"body_kind,omitempty"`
	Body     yaml.Node `yaml:"body,omitempty"`
	Payload  string    `yaml:"payload,omitempty"`
}

// OperationDefinition represents one operation. Exactly one kind field is set; then and
// otherwise only apply to the conditional kinds.
type OperationDefinition struct {
	HTTP         int                   `yaml:"http,omitempty"`
	Grep         string                `yaml:"grep,omitempty"`
	Match        []string              `yaml:"match,omitempty"`
	Then         []OperationDefinition `yaml:"then,omitempty"`
	Otherwise    []OperationDefinition `yaml:"otherwise,omitempty"`
	Next         string                `yaml:"next,omitempty"`
	Success      *string               `yaml:"success,omitempty"`
	Failure      *string               `yaml:"failure,omitempty"`
	Save         *SaveDefinition       `yaml:"save,omitempty"`
	SaveBody     *SaveDefinition       `yaml:"save_body,omitempty"`
	Print        []string              `yaml:"print,omitempty"`
	PrintBody    bool                  `yaml:"print_body,omitempty"`
	PrintHeaders *[]string             `yaml:"print_headers,omitempty"`
	PrintCookies *[]string             `yaml:"print_cookies,omitempty"`
	PrintAll     bool                  `yaml:"print_all,omitempty"`
}

// SaveDefinition represents a file write.
type SaveDefinition struct {
	File   string `yaml:"file"`
	Value  string `yaml:"value,omitempty"`
	Append bool   `yaml:"append,omitempty"`
}

// GraphDefinition represents a named entry point with an optional test flow.
type GraphDefinition struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	Test  string `yaml:"test,omitempty"`
}
