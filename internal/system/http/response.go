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

package http

import (
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Response is a fully read snapshot of an HTTP response. Extraction and operations read from it
// any number of times after the underlying body has been closed.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Cookie returns the value of the first cookie set with the given name.
func (r *Response) Cookie(name string) (string, bool) {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// HeaderValue returns the first value of a header, matched case-insensitively.
func (r *Response) HeaderValue(name string) (string, bool) {
	values := r.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Size returns the body size in a human readable form.
func (r *Response) Size() string {
	return humanize.Bytes(uint64(len(r.Body)))
}

// ReadResponse drains and closes the body of an http.Response.
func ReadResponse(resp *http.Response) (*Response, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Header:     resp.Header.Clone(),
		Cookies:    resp.Cookies(),
		Body:       body,
	}, nil
}

// Send executes the request and returns the read response. Every failure is wrapped with the
// request line so the caller can report which exchange broke.
func Send(client HTTPClientInterface, req *http.Request) (*Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s %s", req.Method, req.URL.Redacted())
	}
	snapshot, err := ReadResponse(resp)
	if err != nil {
		return nil, errors.Wrapf(err, "receiving %s %s", req.Method, req.URL.Redacted())
	}
	return snapshot, nil
}
