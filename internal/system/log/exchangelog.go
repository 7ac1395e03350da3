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

package log

import (
	"fmt"
	"net/http"
	"time"
)

// ExchangeLogTransport wraps a round tripper and logs every outbound exchange in a CLF-like line
// with the response time in milliseconds.
func ExchangeLogTransport(logger *Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &exchangeLogTransport{logger: logger, next: next}
}

type exchangeLogTransport struct {
	logger *Logger
	next   http.RoundTripper
}

// RoundTrip sends the request through the wrapped transport and logs the outcome.
func (t *exchangeLogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsedMs := time.Since(start).Milliseconds()

	if err != nil {
		t.logger.Debug(fmt.Sprintf(`[%s] "%s %s %s" failed %d`,
			start.Format("02/Jan/2006:15:04:05 -0700"), req.Method, req.URL.String(), req.Proto, elapsedMs),
			Error(err))
		return nil, err
	}

	t.logger.Debug(fmt.Sprintf(`[%s] "%s %s %s" %d %d %d`,
		start.Format("02/Jan/2006:15:04:05 -0700"),
		req.Method,
		req.URL.String(),
		req.Proto,
		resp.StatusCode,
		resp.ContentLength,
		elapsedMs,
	))
	return resp, nil
}
