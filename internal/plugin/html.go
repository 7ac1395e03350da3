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
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// HTMLContents selects the rendered children of the matched tag instead of an attribute.
const HTMLContents = "contents"

// HTML creates a plugin extracting from the first tag named tag whose attributes all match
// the given patterns. The value is the attribute named extract, or the tag contents when
// extract is HTMLContents.
func HTML(name, tag string, attributes map[string]string, extract string) (*Plugin, error) {
	matchers := make(map[string]*regexp.Regexp, len(attributes))
	for key, pattern := range attributes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		matchers[key] = re
	}

	return New(name, OutputKindData, Strategy{
		Policy: PolicyFromResponse,
		Extract: func(resp *httpservice.Response) (string, bool) {
			doc, err := html.Parse(bytes.NewReader(resp.Body))
			if err != nil {
				return "", false
			}
			node := findTag(doc, strings.ToLower(tag), matchers)
			if node == nil {
				return "", false
			}
			if extract == HTMLContents {
				return renderChildren(node)
			}
			for _, attr := range node.Attr {
				if attr.Key == extract {
					return attr.Val, attr.Val != ""
				}
			}
			return "", false
		},
	}), nil
}

func findTag(node *html.Node, tag string, matchers map[string]*regexp.Regexp) *html.Node {
	if node.Type == html.ElementNode && node.Data == tag && attributesMatch(node, matchers) {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findTag(child, tag, matchers); found != nil {
			return found
		}
	}
	return nil
}

func attributesMatch(node *html.Node, matchers map[string]*regexp.Regexp) bool {
	for key, re := range matchers {
		matched := false
		for _, attr := range node.Attr {
			if attr.Key == key && re.MatchString(attr.Val) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func renderChildren(node *html.Node) (string, bool) {
	var buf bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", false
		}
	}
	value := strings.TrimSpace(buf.String())
	return value, value != ""
}
