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

// Package http provides the outbound HTTP client used to send materialized requests.
package http

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/asgardeo/raider/internal/system/config"
	"github.com/asgardeo/raider/internal/system/constants"
	"github.com/asgardeo/raider/internal/system/log"
)

var (
	defaultClient HTTPClientInterface
	once          sync.Once
)

// HTTPClientInterface defines the interface for HTTP client operations.
type HTTPClientInterface interface {
	// Do executes an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
	// Get issues a GET to the specified URL.
	Get(url string) (*http.Response, error)
}

// HTTPClient implements HTTPClientInterface. Redirects are never followed so that callers
// observe 3xx responses themselves.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTPClient with default settings.
func NewHTTPClient() HTTPClientInterface {
	return NewHTTPClientWithTimeout(constants.DefaultHTTPTimeoutSeconds * time.Second)
}

// NewHTTPClientWithTimeout creates a new HTTPClient with a custom timeout.
func NewHTTPClientWithTimeout(timeout time.Duration) HTTPClientInterface {
	return &HTTPClient{
		client: &http.Client{
			Timeout:       timeout,
			CheckRedirect: doNotFollowRedirects,
		},
	}
}

// NewHTTPClientWithConfig creates a new HTTPClient around a caller provided client.
func NewHTTPClientWithConfig(client *http.Client) HTTPClientInterface {
	return &HTTPClient{
		client: client,
	}
}

// NewTransportClient builds a client honouring the proxy, TLS verification and timeout settings.
func NewTransportClient(cfg config.HTTPConfig) (HTTPClientInterface, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// #nosec G402 -- verification is a user controlled setting for intercepting proxies.
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.Verify}

	if cfg.UseProxy {
		if cfg.Proxy == "" {
			return nil, errors.New("proxy is enabled but no proxy URL is configured")
		}
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid proxy URL %q", cfg.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	} else {
		transport.Proxy = nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeoutSeconds
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HTTPTransport"))
	return &HTTPClient{
		client: &http.Client{
			Timeout:       time.Duration(timeout) * time.Second,
			Transport:     log.ExchangeLogTransport(logger, transport),
			CheckRedirect: doNotFollowRedirects,
		},
	}, nil
}

// GetHTTPClient returns the default singleton HTTPClient instance.
func GetHTTPClient() HTTPClientInterface {
	once.Do(func() {
		defaultClient = NewHTTPClient()
	})
	return defaultClient
}

// Do executes an HTTP request and returns an HTTP response.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// Get issues a GET to the specified URL.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

func doNotFollowRedirects(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}
