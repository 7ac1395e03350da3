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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/raider/internal/system/config"
)

// HTTPClientTestSuite defines the test suite for the HTTP client.
type HTTPClientTestSuite struct {
	suite.Suite
}

// TestHTTPClientSuite runs the HTTP client test suite.
func TestHTTPClientSuite(t *testing.T) {
	suite.Run(t, new(HTTPClientTestSuite))
}

func (suite *HTTPClientTestSuite) TestNewHTTPClient() {
	client := NewHTTPClient()
	assert.NotNil(suite.T(), client)
	assert.Implements(suite.T(), (*HTTPClientInterface)(nil), client)

	httpClient := client.(*HTTPClient)
	assert.Equal(suite.T(), 30*time.Second, httpClient.client.Timeout)
}

func (suite *HTTPClientTestSuite) TestNewHTTPClientWithTimeout() {
	client := NewHTTPClientWithTimeout(5 * time.Second)
	httpClient := client.(*HTTPClient)
	assert.Equal(suite.T(), 5*time.Second, httpClient.client.Timeout)
}

func (suite *HTTPClientTestSuite) TestDoesNotFollowRedirects() {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/landing", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer testServer.Close()

	client := NewHTTPClient()
	resp, err := client.Get(testServer.URL + "/start")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusFound, resp.StatusCode)
	assert.Equal(suite.T(), "/landing", resp.Header.Get("Location"))
	_ = resp.Body.Close()
}

func (suite *HTTPClientTestSuite) TestDoWithPost() {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(suite.T(), "POST", r.Method)
		assert.Equal(suite.T(), "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer testServer.Close()

	client := NewHTTPClient()
	req, err := http.NewRequest("POST", testServer.URL, strings.NewReader(`{"test": "data"}`))
	assert.NoError(suite.T(), err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
}

func (suite *HTTPClientTestSuite) TestDoWithTimeout() {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer testServer.Close()

	client := NewHTTPClientWithTimeout(100 * time.Millisecond)
	req, err := http.NewRequest("GET", testServer.URL, nil)
	assert.NoError(suite.T(), err)

	resp, err := client.Do(req)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), resp)
	assert.Contains(suite.T(), err.Error(), "deadline exceeded")
}

func (suite *HTTPClientTestSuite) TestNewTransportClient() {
	testCases := []struct {
		name      string
		cfg       config.HTTPConfig
		expectErr bool
	}{
		{"NoProxy", config.HTTPConfig{Timeout: 3}, false},
		{"WithProxy", config.HTTPConfig{UseProxy: true, Proxy: "http://127.0.0.1:8080"}, false},
		{"ProxyEnabledWithoutURL", config.HTTPConfig{UseProxy: true}, true},
		{"InvalidProxyURL", config.HTTPConfig{UseProxy: true, Proxy: "http://[::1"}, true},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			client, err := NewTransportClient(tc.cfg)
			if tc.expectErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func (suite *HTTPClientTestSuite) TestTransportClientTimeoutDefault() {
	client, err := NewTransportClient(config.HTTPConfig{})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 30*time.Second, client.(*HTTPClient).client.Timeout)
}

func (suite *HTTPClientTestSuite) TestGetHTTPClientSingleton() {
	first := GetHTTPClient()
	second := GetHTTPClient()
	assert.Same(suite.T(), first, second)
}
