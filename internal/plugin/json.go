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
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	httpservice "github.com/asgardeo/raider/internal/system/http"
	"github.com/asgardeo/raider/internal/system/log"
	"github.com/asgardeo/raider/internal/system/metrics"
)

// JSON creates a plugin extracting a value from a JSON response body. The path uses dots
// for object keys and brackets for array indices, for example "data.items[0].id". Keys with
// dots can be quoted: `"a.b".c`.
func JSON(name, path string) (*Plugin, error) {
	keys, err := parseJSONPath(path)
	if err != nil {
		return nil, err
	}
	return New(name, OutputKindData, Strategy{
		Policy: PolicyFromResponse,
		Extract: func(resp *httpservice.Response) (string, bool) {
			return lookupJSON(name, resp.Body, keys)
		},
	}), nil
}

// JSONFromPlugin creates a plugin applying a JSON path to the value of another plugin.
func JSONFromPlugin(name, path string, parent *Plugin) (*Plugin, error) {
	keys, err := parseJSONPath(path)
	if err != nil {
		return nil, err
	}
	return New(name, OutputKindData, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(_ *ResolveContext, inputs []string) (string, bool) {
			value, ok := lookupJSON(name, []byte(inputs[0]), keys)
			if !ok {
				metrics.RecordExtractionMiss(name)
			}
			return value, ok
		},
	}, parent), nil
}

func lookupJSON(name string, data []byte, keys []string) (string, bool) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyPluginName, name))

	var parser fastjson.Parser
	root, err := parser.ParseBytes(data)
	if err != nil {
		logger.Debug("Body is not valid JSON", log.Error(err))
		return "", false
	}

	value := root.Get(keys...)
	if value == nil {
		logger.Warn("JSON path not found", log.String("path", strings.Join(keys, ".")))
		return "", false
	}
	switch value.Type() {
	case fastjson.TypeString:
		return string(value.GetStringBytes()), true
	case fastjson.TypeNull:
		logger.Warn("JSON value is null", log.String("path", strings.Join(keys, ".")))
		return "", false
	default:
		return value.String(), true
	}
}

// parseJSONPath splits a path into the keys understood by fastjson, where array indices are
// given as decimal strings.
func parseJSONPath(path string) ([]string, error) {
	var keys []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			keys = append(keys, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			flush()
		case '"':
			end := strings.IndexByte(path[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote in JSON path %q", path)
			}
			current.WriteString(path[i+1 : i+1+end])
			i += end + 1
		case '[':
			flush()
			end := strings.IndexByte(path[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index in JSON path %q", path)
			}
			index := path[i+1 : i+1+end]
			if _, err := strconv.Atoi(index); err != nil {
				return nil, fmt.Errorf("invalid index %q in JSON path %q", index, path)
			}
			keys = append(keys, index)
			i += end + 1
		default:
			current.WriteByte(c)
		}
	}
	flush()

	if len(keys) == 0 {
		return nil, fmt.Errorf("empty JSON path")
	}
	return keys, nil
}
