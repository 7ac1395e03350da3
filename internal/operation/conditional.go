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

package operation

import (
	"regexp"
	"strconv"

	"github.com/asgardeo/raider/internal/plugin"
	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// HTTPStatus creates a conditional checking the response status code.
func HTTPStatus(status int) *Operation {
	return &Operation{
		kind:          KindStatusMatch,
		needsResponse: true,
		conditional:   true,
		description:   strconv.Itoa(status),
		check: func(_ *Env, resp *httpservice.Response) bool {
			return resp.StatusCode == status
		},
	}
}

// Grep creates a conditional searching the response body for a regular expression.
func Grep(pattern string) (*Operation, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Operation{
		kind:          KindBodyRegexMatch,
		needsResponse: true,
		conditional:   true,
		description:   pattern,
		check: func(_ *Env, resp *httpservice.Response) bool {
			return re.Match(resp.Body)
		},
	}, nil
}

// Operand is one side of an equality check: a literal or the resolved value of a plugin.
type Operand struct {
	literal string
	plugin  *plugin.Plugin
}

// LiteralOperand creates a literal operand.
func LiteralOperand(value string) Operand {
	return Operand{literal: value}
}

// PluginOperand creates an operand reading the value of a plugin.
func PluginOperand(p *plugin.Plugin) Operand {
	return Operand{plugin: p}
}

func (o Operand) value() string {
	if o.plugin == nil {
		return o.literal
	}
	value, _ := o.plugin.Value()
	return value
}

func (o Operand) String() string {
	if o.plugin == nil {
		return strconv.Quote(o.literal)
	}
	return o.plugin.Name()
}

// Match creates a conditional comparing two operands for equality.
func Match(left, right Operand) *Operation {
	return &Operation{
		kind:          KindEqualityMatch,
		needsUserData: true,
		conditional:   true,
		description:   left.String() + "," + right.String(),
		plugins:       []*plugin.Plugin{left.plugin, right.plugin},
		check: func(_ *Env, _ *httpservice.Response) bool {
			return left.value() == right.value()
		},
	}
}
