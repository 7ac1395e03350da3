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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/request"
	"github.com/asgardeo/raider/internal/session"
)

const demoProject = `
name: demo
users:
  - username: alice
    password: s3cret
    data:
      tenant: acme
      locale: en
  - username: bob
    password: hunter2
plugins:
  - name: csrf
    type: html
    tag: input
    attributes:
      name: "^csrf$"
    extract: value
  - name: session
    type: cookie
  - name: access_token
    type: json
    path: data.token
  - name: auth
    type: bearer_auth
    token: $access_token
  - name: encoded_csrf
    type: urlencode
    from: $csrf
  - name: tracking
    type: cookie
    pattern: "^_ga"
  - name: client
    type: header
    value: raider
flows:
  - name: initialization
    request:
      method: GET
      url: https://example.com/login
    outputs: [$csrf, $session]
    operations:
      - http: 200
        then:
          - next: login
        otherwise:
          - failure: login page unavailable
  - name: login
    request:
      method: POST
      url: https://example.com/login
      cookies: [$session]
      headers: [$client]
      body:
        user: $username
        pass: $password
        csrf: $csrf
        price: $$5
        meta:
          $tenant: yes
    outputs: [$access_token]
    operations:
      - grep: "Welcome"
        then:
          - print: ["token", $access_token]
          - success: logged in
      - failure: ""
  - name: profile
    extends: login
    request:
      method: GET
      url: https://example.com/me
      headers: [$auth, $client]
    operations:
      - match: [$username, alice]
        then:
          - save:
              file: token.txt
              value: $access_token
              append: true
          - next: initialization
graphs:
  - name: authenticate
    start: initialization
    test: profile
`

type DefinitionTestSuite struct {
	suite.Suite
}

func TestDefinitionSuite(t *testing.T) {
	suite.Run(t, new(DefinitionTestSuite))
}

func (suite *DefinitionTestSuite) build(yamlText string) (*Project, error) {
	def, err := Parse([]byte(yamlText))
	require.NoError(suite.T(), err)
	return Build(def)
}

func (suite *DefinitionTestSuite) TestBuildProject() {
	project, err := suite.build(demoProject)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "demo", project.Name)
	assert.Equal(suite.T(), []string{"initialization", "login", "profile"}, project.Graph.FlowNames())
	graph, ok := project.Graph.GetGraph("authenticate")
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "initialization", graph.Start)
	assert.Equal(suite.T(), "profile", graph.Test)

	initFlow, _ := project.Graph.GetFlow("initialization")
	require.Len(suite.T(), initFlow.Operations(), 1)
	assert.Equal(suite.T(), "(Http:200=[(Next:login)]/[(Failure)])", initFlow.Operations()[0].String())
	require.Len(suite.T(), initFlow.Outputs(), 2)
	assert.Equal(suite.T(), plugin.PolicyFromResponse, initFlow.Outputs()[0].Policy())
}

func (suite *DefinitionTestSuite) TestPluginPolicies() {
	project, err := suite.build(demoProject)
	require.NoError(suite.T(), err)

	testCases := []struct {
		name   string
		policy plugin.Policy
		kind   plugin.OutputKind
	}{
		{"csrf", plugin.PolicyFromResponse, plugin.OutputKindData},
		{"session", plugin.PolicyFromResponse, plugin.OutputKindCookie},
		{"auth", plugin.PolicyFromOtherPlugins, plugin.OutputKindHeader},
		{"encoded_csrf", plugin.PolicyFromOtherPlugins, plugin.OutputKindData},
		{"client", plugin.PolicyLiteral, plugin.OutputKindHeader},
		{"username", plugin.PolicyFromUserData, plugin.OutputKindData},
	}
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			p, ok := project.Plugin(tc.name)
			require.True(suite.T(), ok)
			assert.Equal(suite.T(), tc.policy, p.Policy())
			assert.Equal(suite.T(), tc.kind, p.Kind())
		})
	}

	tracking, _ := project.Plugin("tracking")
	assert.False(suite.T(), tracking.NameKnownInAdvance())
	assert.Equal(suite.T(), "csrf_urlencoded", mustPlugin(suite.T(), project, "encoded_csrf").Name())
	assert.Contains(suite.T(), project.PluginNames(), "password")
}

func (suite *DefinitionTestSuite) TestOrderedBody() {
	project, err := suite.build(demoProject)
	require.NoError(suite.T(), err)
	login, _ := project.Graph.GetFlow("login")

	tmpl := login.Request()
	assert.Equal(suite.T(), request.BodyForm, tmpl.BodyKind())
	fields := tmpl.Body().Fields()
	require.Len(suite.T(), fields, 5)
	keys := []string{}
	for _, f := range fields {
		keys = append(keys, f.Key.Literal())
	}
	assert.Equal(suite.T(), []string{"user", "pass", "csrf", "price", "meta"}, keys)
	assert.Same(suite.T(), mustPlugin(suite.T(), project, "username"), fields[0].Value.Plugin())
	assert.Same(suite.T(), mustPlugin(suite.T(), project, "csrf"), fields[2].Value.Plugin())
	assert.Equal(suite.T(), "$5", fields[3].Value.Literal())

	nested := fields[4].Value.Body()
	require.NotNil(suite.T(), nested)
	require.Len(suite.T(), nested.Fields(), 1)
	assert.Same(suite.T(), mustPlugin(suite.T(), project, "tenant"), nested.Fields()[0].Key.Plugin())
	assert.Equal(suite.T(), "yes", nested.Fields()[0].Value.Literal())
}

func (suite *DefinitionTestSuite) TestExtendsInheritsRequest() {
	project, err := suite.build(demoProject)
	require.NoError(suite.T(), err)
	profile, _ := project.Graph.GetFlow("profile")
	login, _ := project.Graph.GetFlow("login")

	tmpl := profile.Request()
	assert.Equal(suite.T(), "GET", tmpl.Method())
	assert.Equal(suite.T(), "https://example.com/me", tmpl.URL().Literal())
	assert.Equal(suite.T(), login.Request().Cookies(), tmpl.Cookies())
	require.Len(suite.T(), tmpl.Headers(), 2)
	assert.Same(suite.T(), mustPlugin(suite.T(), project, "client"), tmpl.Headers()[0])
	assert.Same(suite.T(), mustPlugin(suite.T(), project, "auth"), tmpl.Headers()[1])
	require.Len(suite.T(), login.Request().Headers(), 1)
	assert.Equal(suite.T(), 5, tmpl.Body().Len())
	assert.Equal(suite.T(), "POST", login.Request().Method())

	require.Len(suite.T(), profile.Operations(), 1)
	assert.Equal(suite.T(), `(Match:username,"alice"=[(Save:token.txt,access_token),(Next:initialization)]/None)`,
		profile.Operations()[0].String())
}

func (suite *DefinitionTestSuite) TestNewSession() {
	project, err := suite.build(demoProject)
	require.NoError(suite.T(), err)

	sess, err := project.NewSession("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "alice", sess.Username)
	assert.Equal(suite.T(), []session.Entry{{Name: "locale", Value: "en"}, {Name: "tenant", Value: "acme"}},
		sess.Entries(session.NamespaceData))

	sess, err = project.NewSession("bob")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hunter2", sess.Password)

	_, err = project.NewSession("mallory")
	assert.Error(suite.T(), err)
}

func (suite *DefinitionTestSuite) TestBuildErrors() {
	testCases := []struct {
		name    string
		project string
		message string
	}{
		{"missing name", "flows: []", "project name is required"},
		{"duplicate plugin", "name: p\nplugins:\n  - {name: a, type: literal}\n  - {name: a, type: literal}",
			"defined more than once"},
		{"unknown plugin type", "name: p\nplugins:\n  - {name: a, type: magic}", `unknown plugin type "magic"`},
		{"self reference", "name: p\nplugins:\n  - {name: a, type: b64encode, from: $a}", "depends on itself"},
		{"regex without group", "name: p\nplugins:\n  - {name: a, type: regex, pattern: abc}",
			"missing capture group"},
		{"bearer without plugin", "name: p\nplugins:\n  - {name: a, type: bearer_auth, token: abc}",
			"token must reference a plugin"},
		{"two operation kinds", "name: p\nflows:\n  - name: f\n    request: {method: GET, url: http://x}\n" +
			"    operations:\n      - {next: a, print_all: true}", "exactly one operation kind"},
		{"branch on terminal", "name: p\nflows:\n  - name: f\n    request: {method: GET, url: http://x}\n" +
			"    operations:\n      - {next: a, then: [{next: b}]}", "does not take then"},
		{"match arity", "name: p\nflows:\n  - name: f\n    request: {method: GET, url: http://x}\n" +
			"    operations:\n      - {match: [a]}", "match takes two operands"},
		{"missing method", "name: p\nflows:\n  - name: f\n    request: {url: http://x}", "method is required"},
		{"unknown body kind", "name: p\nflows:\n  - name: f\n    request: {method: POST, url: http://x, " +
			"body_kind: xml, body: {a: b}}", `unknown body kind "xml"`},
		{"extends undefined", "name: p\nflows:\n  - name: f\n    extends: g\n    request: {}", "extends undefined flow g"},
		{"graph start undefined", "name: p\ngraphs:\n  - {name: g, start: f}", "undefined flow"},
	}
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.build(tc.project)
			require.Error(suite.T(), err)
			assert.Contains(suite.T(), err.Error(), tc.message)
		})
	}
}

func (suite *DefinitionTestSuite) TestLoadNamesProjectAfterFile() {
	path := filepath.Join(suite.T().TempDir(), "shop.yaml")
	content := "flows:\n  - name: home\n    request: {method: GET, url: http://shop}\n"
	require.NoError(suite.T(), os.WriteFile(path, []byte(content), 0o600))

	project, err := Load(path)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "shop", project.Name)

	_, err = Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	assert.Error(suite.T(), err)
}

func (suite *DefinitionTestSuite) TestReferenceSyntax() {
	name, ok := pluginName("$token")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "token", name)
	_, ok = pluginName("$$token")
	assert.False(suite.T(), ok)
	_, ok = pluginName("$")
	assert.False(suite.T(), ok)
	assert.Equal(suite.T(), "$token", literal("$$token"))
	assert.Equal(suite.T(), "token", literal("token"))
}

func mustPlugin(t *testing.T, project *Project, name string) *plugin.Plugin {
	p, ok := project.Plugin(name)
	require.True(t, ok, name)
	return p
}
