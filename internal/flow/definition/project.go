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

package definition

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/asgardeo/raider/internal/flow/model"
	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/session"
)

// Project is a loaded project: its flow graph, users and named plugins.
type Project struct {
	Name        string
	Graph       *model.FlowGraph
	Users       []UserDefinition
	plugins     map[string]*plugin.Plugin
	pluginOrder []string
}

// Parse decodes a project definition.
func Parse(data []byte) (*ProjectDefinition, error) {
	var def ProjectDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse project definition: %w", err)
	}
	return &def, nil
}

// Load reads and builds the project file at path. A project without a name is named after
// its file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	def, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Build(def)
}

// Build converts a definition into a project.
func Build(def *ProjectDefinition) (*Project, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	b, err := newBuilder(def.Plugins)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", def.Name, err)
	}
	graph, err := b.buildGraph(def)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", def.Name, err)
	}
	return &Project{
		Name:        def.Name,
		Graph:       graph,
		Users:       def.Users,
		plugins:     b.plugins,
		pluginOrder: b.order,
	}, nil
}

// Plugin returns the plugin with the given name, including implicit user context plugins.
func (p *Project) Plugin(name string) (*plugin.Plugin, bool) {
	pl, ok := p.plugins[name]
	return pl, ok
}

// PluginNames returns the plugin names in the order they were built.
func (p *Project) PluginNames() []string {
	return append([]string(nil), p.pluginOrder...)
}

// User returns the user with the given name. The empty name selects the first user.
func (p *Project) User(username string) (UserDefinition, bool) {
	for _, user := range p.Users {
		if username == "" || user.Username == username {
			return user, true
		}
	}
	return UserDefinition{}, false
}

// NewSession creates a session for the given user, seeded with the user's data values.
func (p *Project) NewSession(username string) (*session.Session, error) {
	user, ok := p.User(username)
	if !ok {
		if username == "" {
			return session.NewSession("", ""), nil
		}
		return nil, fmt.Errorf("project %s has no user %s", p.Name, username)
	}
	sess := session.NewSession(user.Username, user.Password)
	keys := make([]string, 0, len(user.Data))
	for key := range user.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sess.SetData(key, user.Data[key])
	}
	return sess, nil
}
