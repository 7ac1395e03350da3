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

// Package request turns declarative request templates into concrete HTTP requests.
package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asgardeo/raider/internal/plugin"
)

var (
	// ErrMissingMethod is returned when a template is built without an HTTP method.
	ErrMissingMethod = errors.New("request method is required")
	// ErrMissingURL is returned when a template is built without a URL.
	ErrMissingURL = errors.New("request URL is required")
	// ErrUnsupportedMethod is returned for methods the transport does not send.
	ErrUnsupportedMethod = errors.New("unsupported request method")
)

var supportedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// BodyKind is the on-wire shape of the request body.
type BodyKind int

const (
	// BodyNone sends no body.
	BodyNone BodyKind = iota
	// BodyParams appends the body entries to the URL query string.
	BodyParams
	// BodyForm sends application/x-www-form-urlencoded data.
	BodyForm
	// BodyJSON sends a JSON document.
	BodyJSON
	// BodyMultipart sends multipart/form-data.
	BodyMultipart
	// BodyRaw sends an opaque payload as is.
	BodyRaw
)

// String returns the name used in project files.
func (k BodyKind) String() string {
	switch k {
	case BodyParams:
		return "params"
	case BodyForm:
		return "data"
	case BodyJSON:
		return "json"
	case BodyMultipart:
		return "multipart"
	case BodyRaw:
		return "raw"
	default:
		return "none"
	}
}

// ParseBodyKind returns the body kind with the given project file name. "form" is accepted as
// an alias of "data" and the empty name means no body.
func ParseBodyKind(name string) (BodyKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return BodyNone, nil
	case "params":
		return BodyParams, nil
	case "data", "form":
		return BodyForm, nil
	case "json":
		return BodyJSON, nil
	case "multipart":
		return BodyMultipart, nil
	case "raw":
		return BodyRaw, nil
	}
	return BodyNone, fmt.Errorf("unknown body kind %q", name)
}

// Template is an immutable request description. Materialization never changes its structure.
type Template struct {
	method   string
	url      Value
	cookies  []*plugin.Plugin
	headers  []*plugin.Plugin
	bodyKind BodyKind
	body     *Body
	payload  *plugin.Plugin
}

// Option configures a Template.
type Option func(*Template)

// WithURL replaces the URL.
func WithURL(url Value) Option {
	return func(t *Template) {
		t.url = url
	}
}

// WithMethod replaces the method.
func WithMethod(method string) Option {
	return func(t *Template) {
		t.method = method
	}
}

// WithCookies merges cookie plugins by name: a cookie already present is replaced in place,
// new ones are appended.
func WithCookies(cookies ...*plugin.Plugin) Option {
	return func(t *Template) {
		t.cookies = mergeByName(t.cookies, cookies, func(a, b string) bool { return a == b })
	}
}

// WithHeaders merges header plugins by case-insensitive name: a header already present is
// replaced in place, new ones are appended.
func WithHeaders(headers ...*plugin.Plugin) Option {
	return func(t *Template) {
		t.headers = mergeByName(t.headers, headers, strings.EqualFold)
	}
}

func mergeByName(current, updates []*plugin.Plugin, same func(a, b string) bool) []*plugin.Plugin {
	merged := append([]*plugin.Plugin(nil), current...)
	for _, update := range updates {
		if update == nil {
			continue
		}
		replaced := false
		for i, existing := range merged {
			if existing != nil && same(existing.Name(), update.Name()) {
				merged[i] = update
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, update)
		}
	}
	return merged
}

// WithBody sets a structured body of the given kind.
func WithBody(kind BodyKind, body *Body) Option {
	return func(t *Template) {
		t.bodyKind = kind
		t.body = body
		t.payload = nil
	}
}

// WithPayload sets an opaque payload resolved from a plugin. With BodyJSON the payload must be
// a JSON document; any other kind is sent as BodyRaw.
func WithPayload(kind BodyKind, payload *plugin.Plugin) Option {
	return func(t *Template) {
		if kind != BodyJSON {
			kind = BodyRaw
		}
		t.bodyKind = kind
		t.payload = payload
		t.body = nil
	}
}

// NewTemplate creates a request template. Method and URL are required.
func NewTemplate(method string, url Value, opts ...Option) (*Template, error) {
	t := &Template{method: method, url: url}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) validate() error {
	t.method = strings.ToUpper(strings.TrimSpace(t.method))
	if t.method == "" {
		return ErrMissingMethod
	}
	if !supportedMethods[t.method] {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, t.method)
	}
	if t.url.IsZero() || (t.url.kind == valuePlugin && t.url.plugin == nil) {
		return ErrMissingURL
	}
	return nil
}

// Clone derives a new template from t with the given overrides applied. Plugins are shared.
func (t *Template) Clone(opts ...Option) (*Template, error) {
	c := &Template{
		method:   t.method,
		url:      t.url,
		cookies:  append([]*plugin.Plugin(nil), t.cookies...),
		headers:  append([]*plugin.Plugin(nil), t.headers...),
		bodyKind: t.bodyKind,
		body:     t.body.clone(),
		payload:  t.payload,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Method returns the HTTP method.
func (t *Template) Method() string {
	return t.method
}

// URL returns the URL value.
func (t *Template) URL() Value {
	return t.url
}

// BodyKind returns the body encoding.
func (t *Template) BodyKind() BodyKind {
	return t.bodyKind
}

// Cookies returns the cookie plugins.
func (t *Template) Cookies() []*plugin.Plugin {
	return t.cookies
}

// Headers returns the header plugins.
func (t *Template) Headers() []*plugin.Plugin {
	return t.headers
}

// Body returns the structured body, if any.
func (t *Template) Body() *Body {
	return t.body
}

// Inputs lists every plugin embedded in the template followed by their direct dependencies,
// each once, in template order.
func (t *Template) Inputs() []*plugin.Plugin {
	var inputs []*plugin.Plugin
	seen := make(map[*plugin.Plugin]bool)
	add := func(p *plugin.Plugin) {
		if p == nil || seen[p] {
			return
		}
		seen[p] = true
		inputs = append(inputs, p)
	}

	var direct []*plugin.Plugin
	collect := func(p *plugin.Plugin) {
		if p != nil {
			direct = append(direct, p)
		}
	}
	collect(t.url.plugin)
	for _, p := range t.cookies {
		collect(p)
	}
	for _, p := range t.headers {
		collect(p)
	}
	t.body.plugins(collect)
	collect(t.payload)

	for _, p := range direct {
		add(p)
	}
	for _, p := range direct {
		for _, dependency := range p.Dependencies() {
			add(dependency)
		}
	}
	return inputs
}

// Lookup returns the input plugin with the given name.
func (t *Template) Lookup(name string) (*plugin.Plugin, bool) {
	for _, p := range t.Inputs() {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}
