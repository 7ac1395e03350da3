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
	"fmt"
	"regexp"

	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// Regex creates a plugin extracting the first capture group of pattern from the response body.
func Regex(name, pattern string) (*Plugin, error) {
	re, err := compileWithGroup(pattern)
	if err != nil {
		return nil, err
	}
	return New(name, OutputKindData, Strategy{
		Policy: PolicyFromResponse,
		Extract: func(resp *httpservice.Response) (string, bool) {
			return firstGroup(re, resp.Text())
		},
	}), nil
}

// RegexFromPlugin creates a plugin applying pattern to the value of another plugin.
func RegexFromPlugin(name, pattern string, parent *Plugin) (*Plugin, error) {
	re, err := compileWithGroup(pattern)
	if err != nil {
		return nil, err
	}
	return New(name, OutputKindData, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(_ *ResolveContext, inputs []string) (string, bool) {
			return firstGroup(re, inputs[0])
		},
	}, parent), nil
}

func compileWithGroup(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("missing capture group in %q", pattern)
	}
	return re, nil
}

func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	match := re.FindStringSubmatch(text)
	if match == nil || match[1] == "" {
		return "", false
	}
	return match[1], true
}
