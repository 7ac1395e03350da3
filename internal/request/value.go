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

package request

import "github.com/asgardeo/raider/internal/plugin"

type valueKind int

const (
	valueLiteral valueKind = iota
	valuePlugin
	valueNested
)

// Value is a template position holding a literal string, a plugin or a nested body.
type Value struct {
	kind    valueKind
	literal string
	plugin  *plugin.Plugin
	nested  *Body
}

// Lit creates a literal value.
func Lit(s string) Value {
	return Value{kind: valueLiteral, literal: s}
}

// Ref creates a value resolved from a plugin at materialization time.
func Ref(p *plugin.Plugin) Value {
	return Value{kind: valuePlugin, plugin: p}
}

// Nested creates a value holding a nested body.
func Nested(b *Body) Value {
	return Value{kind: valueNested, nested: b}
}

// Plugin returns the referenced plugin, or nil for literal and nested values.
func (v Value) Plugin() *plugin.Plugin {
	return v.plugin
}

// Literal returns the text of a literal value.
func (v Value) Literal() string {
	return v.literal
}

// Body returns the nested body, or nil for literal and plugin values.
func (v Value) Body() *Body {
	return v.nested
}

// IsZero reports whether the value is an empty literal.
func (v Value) IsZero() bool {
	return v.kind == valueLiteral && v.literal == ""
}

// Field is one key/value entry of a body.
type Field struct {
	Key   Value
	Value Value
}

// Body is an ordered, arbitrarily nested mapping whose keys and values may be plugins.
type Body struct {
	fields []Field
}

// NewBody creates an empty body.
func NewBody() *Body {
	return &Body{}
}

// Add appends an entry and returns the body for chaining.
func (b *Body) Add(key, value Value) *Body {
	b.fields = append(b.fields, Field{Key: key, Value: value})
	return b
}

// Set appends an entry keyed by a literal name.
func (b *Body) Set(key string, value Value) *Body {
	return b.Add(Lit(key), value)
}

// Fields returns the entries in insertion order.
func (b *Body) Fields() []Field {
	if b == nil {
		return nil
	}
	return b.fields
}

// Len returns the number of top level entries.
func (b *Body) Len() int {
	if b == nil {
		return 0
	}
	return len(b.fields)
}

func (b *Body) clone() *Body {
	if b == nil {
		return nil
	}
	out := &Body{fields: make([]Field, len(b.fields))}
	for i, f := range b.fields {
		out.fields[i] = Field{Key: f.Key.clone(), Value: f.Value.clone()}
	}
	return out
}

func (v Value) clone() Value {
	if v.kind == valueNested {
		return Nested(v.nested.clone())
	}
	return v
}

func (b *Body) plugins(visit func(*plugin.Plugin)) {
	for _, f := range b.Fields() {
		for _, v := range []Value{f.Key, f.Value} {
			switch v.kind {
			case valuePlugin:
				visit(v.plugin)
			case valueNested:
				v.nested.plugins(visit)
			}
		}
	}
}
