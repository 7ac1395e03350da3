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

import (
	"context"
	"fmt"

	"github.com/Velocidex/ordereddict"

	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/prompt"
	"github.com/asgardeo/raider/internal/session"
	"github.com/asgardeo/raider/internal/system/constants"
	"github.com/asgardeo/raider/internal/system/log"
)

const loggerComponentName = "RequestMaterializer"

// Materializer resolves every plugin of a template into a concrete request.
type Materializer struct {
	prompter  prompt.PrompterInterface
	userAgent string
}

// NewMaterializer creates a materializer. A nil prompter disables the interactive fallback.
func NewMaterializer(prompter prompt.PrompterInterface, userAgent string) *Materializer {
	if prompter == nil {
		prompter = prompt.NonInteractivePrompter{}
	}
	return &Materializer{prompter: prompter, userAgent: userAgent}
}

// Materialize resolves the template against the session and writes every resolved input back
// into the session namespace matching its kind. Absent values go through the interactive
// fallback and are dropped if still empty.
func (m *Materializer) Materialize(ctx context.Context, tmpl *Template,
	sess *session.Session) (*Concrete, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
	if sess == nil {
		sess = session.NewSession("", "")
	}
	rctx := &plugin.ResolveContext{Context: ctx, UserData: sess, Prompter: m.prompter}

	concrete := &Concrete{
		Method:   tmpl.method,
		Cookies:  ordereddict.NewDict(),
		Headers:  ordereddict.NewDict(),
		BodyKind: tmpl.bodyKind,
		Body:     ordereddict.NewDict(),
	}

	url, ok, err := m.resolveValue(rctx, sess, tmpl.url)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: URL plugin %s has no value", ErrMissingURL, tmpl.url.plugin.Name())
	}
	concrete.URL = url

	if m.userAgent != "" {
		concrete.Headers.Set(constants.UserAgentHeaderName, m.userAgent)
	}
	if err := m.resolveNamed(rctx, sess, tmpl.cookies, concrete.Cookies); err != nil {
		return nil, err
	}
	if err := m.resolveNamed(rctx, sess, tmpl.headers, concrete.Headers); err != nil {
		return nil, err
	}

	if tmpl.payload != nil {
		value, ok, err := m.resolveInput(rctx, sess, tmpl.payload)
		if err != nil {
			return nil, err
		}
		if ok {
			concrete.Payload = []byte(value)
		}
	} else if err := m.resolveBody(rctx, sess, tmpl.body, concrete.Body); err != nil {
		return nil, err
	}

	logger.Debug("Materialized request", log.String("method", concrete.Method),
		log.String("url", concrete.URL), log.Int("cookies", concrete.Cookies.Len()),
		log.Int("headers", concrete.Headers.Len()))
	return concrete, nil
}

// resolveNamed fills dst with the cookies or headers of the template. Plugins whose name is
// still a pattern are named through the prompter and rebound to the user data.
func (m *Materializer) resolveNamed(rctx *plugin.ResolveContext, sess *session.Session,
	plugins []*plugin.Plugin, dst *ordereddict.Dict) error {
	for _, p := range plugins {
		if !p.NameKnownInAdvance() && p.Name() == p.Pattern() {
			name, err := m.prompter.PromptName(p.Kind().String(), p.Pattern())
			if err != nil || name == "" {
				log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
					Warn("Dropping input without a name", log.String("pattern", p.Pattern()))
				continue
			}
			p.RebindToUserData(name)
		}

		value, ok, err := m.resolveInput(rctx, sess, p)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		dst.Set(p.Name(), value)
	}
	return nil
}

func (m *Materializer) resolveBody(rctx *plugin.ResolveContext, sess *session.Session,
	body *Body, dst *ordereddict.Dict) error {
	for _, field := range body.Fields() {
		key, ok, err := m.resolveValue(rctx, sess, field.Key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if field.Value.kind == valueNested {
			nested := ordereddict.NewDict()
			if err := m.resolveBody(rctx, sess, field.Value.nested, nested); err != nil {
				return err
			}
			dst.Set(key, nested)
			continue
		}

		value, ok, err := m.resolveValue(rctx, sess, field.Value)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		dst.Set(key, value)
	}
	return nil
}

func (m *Materializer) resolveValue(rctx *plugin.ResolveContext, sess *session.Session,
	v Value) (string, bool, error) {
	switch v.kind {
	case valuePlugin:
		return m.resolveInput(rctx, sess, v.plugin)
	case valueNested:
		return "", false, fmt.Errorf("nested body used as a scalar value")
	default:
		return v.literal, true, nil
	}
}

// resolveInput resolves one input plugin with the fallback chain: the plugin itself, the
// session for response-bound plugins that were never extracted, then the prompter.
func (m *Materializer) resolveInput(rctx *plugin.ResolveContext, sess *session.Session,
	p *plugin.Plugin) (string, bool, error) {
	var value string
	var ok bool
	if p.Policy() == plugin.PolicyFromResponse {
		if value, ok = p.Value(); !ok {
			value, ok = sess.Get(p.Name())
		}
	} else {
		var err error
		value, ok, err = p.Resolve(rctx)
		if err != nil {
			return "", false, err
		}
	}

	if !ok || value == "" {
		prompted, err := m.prompter.PromptValue(p.Kind().String(), p.Name())
		if err != nil {
			return "", false, fmt.Errorf("prompting for %s: %w", p.Name(), err)
		}
		if prompted == "" {
			log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
				Debug("Dropping input without a value", log.String(log.LoggerKeyPluginName, p.Name()))
			return "", false, nil
		}
		value = prompted
	}

	StoreValue(sess, p, value)
	return value, true, nil
}

// StoreValue writes a resolved value into the session namespace matching the plugin kind.
func StoreValue(sess *session.Session, p *plugin.Plugin, value string) {
	if sess == nil || value == "" {
		return
	}
	switch p.Kind() {
	case plugin.OutputKindCookie:
		sess.SetCookie(p.Name(), value)
	case plugin.OutputKindHeader:
		sess.SetHeader(p.Name(), value)
	default:
		sess.SetData(p.Name(), value)
	}
}
