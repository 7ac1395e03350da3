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
	"net/url"
	"strings"
)

// URLEncode creates a plugin percent-encoding the value of parent. Spaces become %20.
func URLEncode(parent *Plugin) *Plugin {
	return processor(parent, "_urlencoded", func(value string) (string, bool) {
		return strings.ReplaceAll(url.QueryEscape(value), "+", "%20"), true
	})
}

// URLDecode creates a plugin decoding a percent-encoded value of parent.
func URLDecode(parent *Plugin) *Plugin {
	return processor(parent, "_urldecoded", func(value string) (string, bool) {
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return "", false
		}
		return decoded, true
	})
}

// B64Encode creates a plugin base64 encoding the value of parent.
func B64Encode(parent *Plugin) *Plugin {
	return processor(parent, "_b64encoded", func(value string) (string, bool) {
		return base64.StdEncoding.EncodeToString([]byte(value)), true
	})
}

// B64Decode creates a plugin decoding the base64 value of parent.
func B64Decode(parent *Plugin) *Plugin {
	return processor(parent, "_b64decoded", func(value string) (string, bool) {
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", false
		}
		return string(decoded), true
	})
}

func processor(parent *Plugin, suffix string, fn func(string) (string, bool)) *Plugin {
	return New(parent.Name()+suffix, OutputKindData, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(_ *ResolveContext, inputs []string) (string, bool) {
			if inputs[0] == "" {
				return "", false
			}
			return fn(inputs[0])
		},
	}, parent)
}
