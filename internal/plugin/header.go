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

package plugin

import (
	"encoding/base64"
	"regexp"

	"github.com/asgardeo/raider/internal/system/constants"
	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// Header creates a header plugin extracted from the response header of the same name.
func Header(name string) *Plugin {
	return New(name, OutputKindHeader, Strategy{
		Policy: PolicyFromResponse,
		Extract: func(resp *httpservice.Response) (string, bool) {
			return resp.HeaderValue(name)
		},
	})
}

// HeaderLiteral creates a header with a value known in advance.
func HeaderLiteral(name, value string) *Plugin {
	p := New(name, OutputKindHeader, Strategy{Policy: PolicyLiteral})
	p.SetValue(value)
	return p
}

// HeaderFromUserData creates a header read from the user context under its own name.
func HeaderFromUserData(name string) *Plugin {
	return New(name, OutputKindHeader, Strategy{Policy: PolicyFromUserData})
}

// HeaderRegex creates a header whose name is not known in advance.
func HeaderRegex(pattern string) (*Plugin, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	match := func(resp *httpservice.Response) (string, string, bool) {
		for name, values := range resp.Header {
			if len(values) > 0 && re.MatchString(name) {
				return name, values[0], true
			}
		}
		return "", "", false
	}
	return New(pattern, OutputKindHeader, Strategy{
		Policy: PolicyFromResponse,
		Extract: func(resp *httpservice.Response) (string, bool) {
			_, value, ok := match(resp)
			return value, ok
		},
		ExtractName: func(resp *httpservice.Response) (string, bool) {
			name, _, ok := match(resp)
			return name, ok
		},
	}), nil
}

// HeaderFromPlugin creates a header named name carrying the value of another plugin.
func HeaderFromPlugin(parent *Plugin, name string) *Plugin {
	return New(name, OutputKindHeader, Strategy{
		Policy:  PolicyFromOtherPlugins,
		Compute: passThrough,
	}, parent)
}

// BasicAuth creates an Authorization header with basic credentials.
func BasicAuth(username, password string) *Plugin {
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return HeaderLiteral(constants.AuthorizationHeaderName, constants.TokenTypeBasic+" "+encoded)
}

// BearerAuth creates an Authorization header carrying the value of a token plugin.
func BearerAuth(token *Plugin) *Plugin {
	return New(constants.AuthorizationHeaderName, OutputKindHeader, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(_ *ResolveContext, inputs []string) (string, bool) {
			if inputs[0] == "" {
				return "", false
			}
			return constants.TokenTypeBearer + " " + inputs[0], true
		},
	}, token)
}
