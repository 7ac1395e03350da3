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
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/valyala/fastjson"

	"github.com/asgardeo/raider/internal/system/constants"
)

// Concrete is a fully resolved request ready to be encoded. Body values are strings or nested
// *ordereddict.Dict values.
type Concrete struct {
	Method   string
	URL      string
	Cookies  *ordereddict.Dict
	Headers  *ordereddict.Dict
	BodyKind BodyKind
	Body     *ordereddict.Dict
	Payload  []byte
}

// Build encodes the request for the wire according to its body kind.
func (c *Concrete) Build(ctx context.Context) (*http.Request, error) {
	target, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing request URL %q: %w", c.URL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URL", ErrMissingURL, c.URL)
	}

	var body io.Reader
	contentType := ""
	switch c.BodyKind {
	case BodyParams:
		target.RawQuery = joinQuery(target.RawQuery, encodeOrdered(c.Body))
	case BodyForm:
		body = strings.NewReader(encodeOrdered(c.Body))
		contentType = constants.ContentTypeFormURLEncoded
	case BodyJSON:
		payload, err := c.jsonPayload()
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
		contentType = constants.ContentTypeJSON
	case BodyMultipart:
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		for _, key := range c.Body.Keys() {
			if err := writer.WriteField(key, stringValue(c.Body, key)); err != nil {
				return nil, fmt.Errorf("writing multipart field %s: %w", key, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("closing multipart body: %w", err)
		}
		body = buf
		contentType = writer.FormDataContentType()
	case BodyRaw:
		body = bytes.NewReader(c.Payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", c.Method, err)
	}
	if contentType != "" {
		req.Header.Set(constants.ContentTypeHeaderName, contentType)
	}
	for _, name := range c.Headers.Keys() {
		req.Header.Set(name, stringValue(c.Headers, name))
	}
	for _, name := range c.Cookies.Keys() {
		req.AddCookie(&http.Cookie{Name: name, Value: stringValue(c.Cookies, name)})
	}
	return req, nil
}

func (c *Concrete) jsonPayload() ([]byte, error) {
	if c.Payload != nil {
		if err := fastjson.ValidateBytes(c.Payload); err != nil {
			return nil, fmt.Errorf("JSON payload is not valid: %w", err)
		}
		return c.Payload, nil
	}
	payload, err := c.Body.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding JSON body: %w", err)
	}
	return payload, nil
}

// encodeOrdered percent-encodes a body keeping the entry order. Nested values are sent as
// their JSON text.
func encodeOrdered(dict *ordereddict.Dict) string {
	parts := make([]string, 0, dict.Len())
	for _, key := range dict.Keys() {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(stringValue(dict, key)))
	}
	return strings.Join(parts, "&")
}

func joinQuery(existing, extra string) string {
	switch {
	case existing == "":
		return extra
	case extra == "":
		return existing
	default:
		return existing + "&" + extra
	}
}

func stringValue(dict *ordereddict.Dict, key string) string {
	value, _ := dict.Get(key)
	switch v := value.(type) {
	case string:
		return v
	case *ordereddict.Dict:
		encoded, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return fmt.Sprint(v)
	}
}
