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
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/asgardeo/raider/internal/flow/constants"
	"github.com/asgardeo/raider/internal/flow/model"
	"github.com/asgardeo/raider/internal/operation"
	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/request"
)

// builder converts definitions into runtime objects. Plugins are built on first reference so
// that definitions may appear in any order.
type builder struct {
	defs     map[string]*PluginDefinition
	plugins  map[string]*plugin.Plugin
	order    []string
	building map[string]bool
}

func newBuilder(defs []PluginDefinition) (*builder, error) {
	b := &builder{
		defs:     make(map[string]*PluginDefinition, len(defs)),
		plugins:  make(map[string]*plugin.Plugin),
		building: make(map[string]bool),
	}
	for i := range defs {
		def := &defs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("plugin #%d has no name", i+1)
		}
		if _, exists := b.defs[def.Name]; exists {
			return nil, fmt.Errorf("plugin %s is defined more than once", def.Name)
		}
		b.defs[def.Name] = def
	}
	for i := range defs {
		if _, err := b.plugin(defs[i].Name); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// pluginName returns the referenced plugin name of a "$name" string. "$$" escapes a literal
// dollar sign.
func pluginName(ref string) (string, bool) {
	prefix := constants.PluginReferencePrefix
	if !strings.HasPrefix(ref, prefix) || strings.HasPrefix(ref, prefix+prefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, prefix)
	return name, name != ""
}

func literal(s string) string {
	prefix := constants.PluginReferencePrefix
	if strings.HasPrefix(s, prefix+prefix) {
		return s[len(prefix):]
	}
	return s
}

// plugin returns the plugin with the given name. A name without a definition reads the user
// context, so "$username" works without declaring it.
func (b *builder) plugin(name string) (*plugin.Plugin, error) {
	if p, ok := b.plugins[name]; ok {
		return p, nil
	}
	def, ok := b.defs[name]
	if !ok {
		p := plugin.Variable(name)
		b.register(name, p)
		return p, nil
	}
	if b.building[name] {
		return nil, fmt.Errorf("plugin %s depends on itself", name)
	}
	b.building[name] = true
	defer delete(b.building, name)

	p, err := b.newPlugin(def)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	b.register(name, p)
	return p, nil
}

func (b *builder) register(name string, p *plugin.Plugin) {
	b.plugins[name] = p
	b.order = append(b.order, name)
}

// reference resolves a "$name" string. ok is false for literals.
func (b *builder) reference(ref string) (p *plugin.Plugin, ok bool, err error) {
	name, ok := pluginName(ref)
	if !ok {
		return nil, false, nil
	}
	p, err = b.plugin(name)
	return p, true, err
}

func (b *builder) requirePlugin(field, ref string) (*plugin.Plugin, error) {
	p, ok, err := b.reference(ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s must reference a plugin, got %q", field, ref)
	}
	return p, nil
}

func (b *builder) newPlugin(def *PluginDefinition) (*plugin.Plugin, error) {
	switch strings.ToLower(def.Type) {
	case "literal":
		return plugin.Literal(def.Name, def.Value), nil
	case "", "variable":
		return plugin.Variable(def.Name), nil
	case "empty":
		return plugin.Empty(def.Name), nil
	case "prompt":
		return plugin.Prompt(def.Name), nil
	case "command":
		if def.Command == "" {
			return nil, fmt.Errorf("command is required")
		}
		return plugin.Command(def.Name, def.Command), nil
	case "file":
		if def.File == "" {
			return nil, fmt.Errorf("file is required")
		}
		if def.Replace == nil {
			return plugin.File(def.File), nil
		}
		with, err := b.requirePlugin("replace.with", def.Replace.With)
		if err != nil {
			return nil, err
		}
		return plugin.FileReplace(def.File, def.Replace.Old, with), nil
	case "cookie":
		return b.namedPlugin(def, plugin.Cookie, plugin.CookieLiteral, plugin.CookieFromUserData,
			plugin.CookieRegex, plugin.CookieFromPlugin)
	case "header":
		return b.namedPlugin(def, plugin.Header, plugin.HeaderLiteral, plugin.HeaderFromUserData,
			plugin.HeaderRegex, plugin.HeaderFromPlugin)
	case "regex":
		if def.From == "" {
			return plugin.Regex(def.Name, def.Pattern)
		}
		parent, err := b.requirePlugin("from", def.From)
		if err != nil {
			return nil, err
		}
		return plugin.RegexFromPlugin(def.Name, def.Pattern, parent)
	case "json":
		if def.From == "" {
			return plugin.JSON(def.Name, def.Path)
		}
		parent, err := b.requirePlugin("from", def.From)
		if err != nil {
			return nil, err
		}
		return plugin.JSONFromPlugin(def.Name, def.Path, parent)
	case "html":
		if def.Tag == "" {
			return nil, fmt.Errorf("tag is required")
		}
		extract := def.Extract
		if extract == "" {
			extract = plugin.HTMLContents
		}
		return plugin.HTML(def.Name, def.Tag, def.Attributes, extract)
	case "basic_auth":
		return plugin.BasicAuth(literal(def.Username), literal(def.Password)), nil
	case "bearer_auth":
		token, err := b.requirePlugin("token", def.Token)
		if err != nil {
			return nil, err
		}
		return plugin.BearerAuth(token), nil
	case "urlencode", "urldecode", "b64encode", "b64decode":
		parent, err := b.requirePlugin("from", def.From)
		if err != nil {
			return nil, err
		}
		return processors[strings.ToLower(def.Type)](parent), nil
	default:
		return nil, fmt.Errorf("unknown plugin type %q", def.Type)
	}
}

var processors = map[string]func(*plugin.Plugin) *plugin.Plugin{
	"urlencode": plugin.URLEncode,
	"urldecode": plugin.URLDecode,
	"b64encode": plugin.B64Encode,
	"b64decode": plugin.B64Decode,
}

// namedPlugin builds a cookie or header plugin. The variant follows the first field set:
// pattern, value, from, user_data.
func (b *builder) namedPlugin(def *PluginDefinition,
	fromResponse func(string) *plugin.Plugin,
	literalValue func(string, string) *plugin.Plugin,
	fromUserData func(string) *plugin.Plugin,
	byPattern func(string) (*plugin.Plugin, error),
	fromPlugin func(*plugin.Plugin, string) *plugin.Plugin) (*plugin.Plugin, error) {
	switch {
	case def.Pattern != "":
		return byPattern(def.Pattern)
	case def.Value != "":
		return literalValue(def.Name, literal(def.Value)), nil
	case def.From != "":
		parent, err := b.requirePlugin("from", def.From)
		if err != nil {
			return nil, err
		}
		return fromPlugin(parent, def.Name), nil
	case def.UserData:
		return fromUserData(def.Name), nil
	default:
		return fromResponse(def.Name), nil
	}
}

func (b *builder) value(s string) (request.Value, error) {
	p, ok, err := b.reference(s)
	if err != nil {
		return request.Value{}, err
	}
	if ok {
		return request.Ref(p), nil
	}
	return request.Lit(literal(s)), nil
}

func (b *builder) pluginList(field string, refs []string) ([]*plugin.Plugin, error) {
	out := make([]*plugin.Plugin, 0, len(refs))
	for _, ref := range refs {
		p, err := b.requirePlugin(field, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// template builds the request template of a flow, deriving it from parent when set.
func (b *builder) template(def *RequestDefinition, parent *request.Template) (*request.Template, error) {
	var opts []request.Option
	url := request.Value{}
	if def.URL != "" {
		v, err := b.value(def.URL)
		if err != nil {
			return nil, err
		}
		url = v
		opts = append(opts, request.WithURL(v))
	}
	if def.Method != "" {
		opts = append(opts, request.WithMethod(def.Method))
	}
	if len(def.Cookies) > 0 {
		cookies, err := b.pluginList("cookies", def.Cookies)
		if err != nil {
			return nil, err
		}
		opts = append(opts, request.WithCookies(cookies...))
	}
	if len(def.Headers) > 0 {
		headers, err := b.pluginList("headers", def.Headers)
		if err != nil {
			return nil, err
		}
		opts = append(opts, request.WithHeaders(headers...))
	}

	kind, err := request.ParseBodyKind(def.BodyKind)
	if err != nil {
		return nil, err
	}
	switch {
	case def.Payload != "":
		payload, err := b.requirePlugin("payload", def.Payload)
		if err != nil {
			return nil, err
		}
		if kind == request.BodyNone {
			kind = request.BodyRaw
		}
		opts = append(opts, request.WithPayload(kind, payload))
	case def.Body.Kind != 0:
		body, err := b.body(&def.Body)
		if err != nil {
			return nil, err
		}
		if kind == request.BodyNone {
			kind = request.BodyForm
		}
		opts = append(opts, request.WithBody(kind, body))
	}

	if parent != nil {
		return parent.Clone(opts...)
	}
	return request.NewTemplate(def.Method, url, opts...)
}

// body converts a YAML mapping into an ordered body. Nested mappings become nested bodies.
func (b *builder) body(node *yaml.Node) (*request.Body, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: request body must be a mapping", node.Line)
	}

	body := request.NewBody()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		key, err := b.value(keyNode.Value)
		if err != nil {
			return nil, err
		}

		var value request.Value
		switch valueNode.Kind {
		case yaml.MappingNode:
			nested, err := b.body(valueNode)
			if err != nil {
				return nil, err
			}
			value = request.Nested(nested)
		case yaml.ScalarNode:
			if valueNode.Tag == "!!null" {
				value = request.Lit("")
				break
			}
			if value, err = b.value(valueNode.Value); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("line %d: body value of %s must be a scalar or a mapping",
				valueNode.Line, keyNode.Value)
		}
		body.Add(key, value)
	}
	return body, nil
}

func (b *builder) operations(defs []OperationDefinition) ([]*operation.Operation, error) {
	ops := make([]*operation.Operation, 0, len(defs))
	for i := range defs {
		op, err := b.operation(&defs[i])
		if err != nil {
			return nil, fmt.Errorf("operation #%d: %w", i+1, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (b *builder) operation(def *OperationDefinition) (*operation.Operation, error) {
	kinds := countSet(def.HTTP != 0, def.Grep != "", len(def.Match) > 0, def.Next != "",
		def.Success != nil, def.Failure != nil, def.Save != nil, def.SaveBody != nil,
		len(def.Print) > 0, def.PrintBody, def.PrintHeaders != nil, def.PrintCookies != nil, def.PrintAll)
	if kinds != 1 {
		return nil, fmt.Errorf("exactly one operation kind is required, found %d", kinds)
	}

	var op *operation.Operation
	conditional := false
	switch {
	case def.HTTP != 0:
		op, conditional = operation.HTTPStatus(def.HTTP), true
	case def.Grep != "":
		grep, err := operation.Grep(def.Grep)
		if err != nil {
			return nil, err
		}
		op, conditional = grep, true
	case len(def.Match) > 0:
		if len(def.Match) != 2 {
			return nil, fmt.Errorf("match takes two operands, got %d", len(def.Match))
		}
		left, err := b.operand(def.Match[0])
		if err != nil {
			return nil, err
		}
		right, err := b.operand(def.Match[1])
		if err != nil {
			return nil, err
		}
		op, conditional = operation.Match(left, right), true
	case def.Next != "":
		op = operation.Next(def.Next)
	case def.Success != nil:
		op = operation.Success(*def.Success)
	case def.Failure != nil:
		op = operation.Failure(*def.Failure)
	case def.Save != nil:
		p, err := b.requirePlugin("save.value", def.Save.Value)
		if err != nil {
			return nil, err
		}
		if def.Save.Append {
			op = operation.SaveAppend(def.Save.File, p)
		} else {
			op = operation.Save(def.Save.File, p)
		}
	case def.SaveBody != nil:
		op = operation.SaveBody(def.SaveBody.File, def.SaveBody.Append)
	case len(def.Print) > 0:
		items := make([]operation.PrintItem, 0, len(def.Print))
		for _, s := range def.Print {
			p, ok, err := b.reference(s)
			if err != nil {
				return nil, err
			}
			if ok {
				items = append(items, operation.Value(p))
			} else {
				items = append(items, operation.Text(literal(s)))
			}
		}
		op = operation.Print(items...)
	case def.PrintBody:
		op = operation.PrintBody()
	case def.PrintHeaders != nil:
		op = operation.PrintHeaders(*def.PrintHeaders...)
	case def.PrintCookies != nil:
		op = operation.PrintCookies(*def.PrintCookies...)
	default:
		op = operation.PrintAll()
	}

	if !conditional {
		if len(def.Then) > 0 || len(def.Otherwise) > 0 {
			return nil, fmt.Errorf("%s does not take then or otherwise branches", op.Kind())
		}
		return op, nil
	}
	then, err := b.operations(def.Then)
	if err != nil {
		return nil, err
	}
	otherwise, err := b.operations(def.Otherwise)
	if err != nil {
		return nil, err
	}
	if len(then) > 0 {
		op.Then(then...)
	}
	if len(otherwise) > 0 {
		op.Otherwise(otherwise...)
	}
	return op, nil
}

func (b *builder) operand(s string) (operation.Operand, error) {
	p, ok, err := b.reference(s)
	if err != nil {
		return operation.Operand{}, err
	}
	if ok {
		return operation.PluginOperand(p), nil
	}
	return operation.LiteralOperand(literal(s)), nil
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// buildGraph converts the flows and graphs of a definition into a FlowGraph.
func (b *builder) buildGraph(def *ProjectDefinition) (*model.FlowGraph, error) {
	graph := model.NewFlowGraph()
	templates := make(map[string]*request.Template, len(def.Flows))
	for i := range def.Flows {
		flowDef := &def.Flows[i]
		var parent *request.Template
		if flowDef.Extends != "" {
			var ok bool
			if parent, ok = templates[flowDef.Extends]; !ok {
				return nil, fmt.Errorf("flow %s extends undefined flow %s", flowDef.Name, flowDef.Extends)
			}
		}
		tmpl, err := b.template(&flowDef.Request, parent)
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", flowDef.Name, err)
		}
		outputs, err := b.pluginList("outputs", flowDef.Outputs)
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", flowDef.Name, err)
		}
		ops, err := b.operations(flowDef.Operations)
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", flowDef.Name, err)
		}
		flow, err := model.NewFlow(flowDef.Name, tmpl, outputs, ops)
		if err != nil {
			return nil, err
		}
		if err := graph.AddFlow(flow); err != nil {
			return nil, err
		}
		templates[flowDef.Name] = tmpl
	}

	for _, graphDef := range def.Graphs {
		if err := graph.AddGraph(&model.Graph{Name: graphDef.Name, Start: graphDef.Start,
			Test: graphDef.Test}); err != nil {
			return nil, err
		}
	}
	return graph, nil
}
