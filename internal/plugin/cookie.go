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
	"regexp"

	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// Cookie creates a cookie plugin extracted from the response cookie of the same name.
func Cookie(name string) *Plugin {
	return New(name, OutputKindCookie, Strategy{
		Policy: PolicyFromResponse,
		Extract: func(resp *httpservice.Response) (string, bool) {
			return resp.Cookie(name)
		},
	})
}

// CookieLiteral creates a cookie with a value known in advance.
func CookieLiteral(name, value string) *Plugin {
	p := New(name, OutputKindCookie, Strategy{Policy: PolicyLiteral})
	p.SetValue(value)
	return p
}

// CookieFromUserData creates a cookie read from the user context under its own name.
func CookieFromUserData(name string) *Plugin {
	return New(name, OutputKindCookie, Strategy{Policy: PolicyFromUserData})
}

// CookieRegex creates a cookie whose name is not known in advance. The first response cookie
// whose name matches the pattern provides both the value and the real name.
func CookieRegex(pattern string) (*Plugin, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	match := func(resp *httpservice.Response) (string, string, bool) {
		for _, c := range resp.Cookies {
			if re.MatchString(c.Name) {
				return c.Name, c.Value, true
			}
		}
		return "", "", false
	}
	return New(pattern, OutputKindCookie, Strategy{
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

// CookieFromPlugin creates a cookie named name carrying the value of another plugin.
func CookieFromPlugin(parent *Plugin, name string) *Plugin {
	return New(name, OutputKindCookie, Strategy{
		Policy:  PolicyFromOtherPlugins,
		Compute: passThrough,
	}, parent)
}

func passThrough(_ *ResolveContext, inputs []string) (string, bool) {
	return inputs[0], inputs[0] != ""
}
