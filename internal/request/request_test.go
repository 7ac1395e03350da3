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
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/session"
)

type RequestTestSuite struct {
	suite.Suite
	sess *session.Session
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestTestSuite))
}

func (suite *RequestTestSuite) SetupTest() {
	suite.sess = session.NewSession("alice", "s3cret")
}

type scriptedPrompter struct {
	values map[string]string
	names  map[string]string
	asked  []string
}

func (s *scriptedPrompter) PromptValue(kind, name string) (string, error) {
	s.asked = append(s.asked, kind+":"+name)
	return s.values[name], nil
}

func (s *scriptedPrompter) PromptName(kind, pattern string) (string, error) {
	s.asked = append(s.asked, kind+"?"+pattern)
	return s.names[pattern], nil
}

func (suite *RequestTestSuite) TestNewTemplateRequiresMethodAndURL() {
	_, err := NewTemplate("", Lit("https://example.com"))
	assert.True(suite.T(), errors.Is(err, ErrMissingMethod))

	_, err = NewTemplate("GET", Lit(""))
	assert.True(suite.T(), errors.Is(err, ErrMissingURL))

	_, err = NewTemplate("GET", Ref(nil))
	assert.True(suite.T(), errors.Is(err, ErrMissingURL))

	_, err = NewTemplate("TRACE", Lit("https://example.com"))
	assert.True(suite.T(), errors.Is(err, ErrUnsupportedMethod))

	tmpl, err := NewTemplate(" post ", Lit("https://example.com"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "POST", tmpl.Method())
}

func (suite *RequestTestSuite) TestMaterializeBodyWritesSession() {
	user := plugin.Variable("username")
	tmpl, err := NewTemplate("POST", Lit("https://example.com/login"),
		WithBody(BodyForm, NewBody().Set("user", Ref(user)).Set("pass", Lit("literal"))))
	require.NoError(suite.T(), err)

	concrete, err := NewMaterializer(nil, "").Materialize(context.Background(), tmpl, suite.sess)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), []string{"user", "pass"}, concrete.Body.Keys())
	value, _ := concrete.Body.Get("user")
	assert.Equal(suite.T(), "alice", value)
	value, _ = concrete.Body.Get("pass")
	assert.Equal(suite.T(), "literal", value)

	entries := suite.sess.Entries(session.NamespaceData)
	assert.Equal(suite.T(), []session.Entry{{Name: "username", Value: "alice"}}, entries)
}

func (suite *RequestTestSuite) TestMaterializeDoesNotMutateTemplate() {
	tmpl, err := NewTemplate("POST", Lit("https://example.com"),
		WithBody(BodyJSON, NewBody().Set("user", Ref(plugin.Variable("username")))))
	require.NoError(suite.T(), err)

	_, err = NewMaterializer(nil, "").Materialize(context.Background(), tmpl, suite.sess)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 1, tmpl.Body().Len())
	assert.NotNil(suite.T(), tmpl.Body().Fields()[0].Value.Plugin())
}

func (suite *RequestTestSuite) TestMaterializeDropsAbsentValues() {
	tmpl, err := NewTemplate("GET", Lit("https://example.com"),
		WithCookies(plugin.CookieFromUserData("sid")),
		WithHeaders(plugin.HeaderLiteral("X-Test", "1"), plugin.HeaderFromUserData("X-Missing")),
		WithBody(BodyParams, NewBody().Set("otp", Ref(plugin.Variable("otp"))).Set("q", Lit("x"))))
	require.NoError(suite.T(), err)

	concrete, err := NewMaterializer(nil, "raider").Materialize(context.Background(), tmpl, suite.sess)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 0, concrete.Cookies.Len())
	assert.Equal(suite.T(), []string{"User-Agent", "X-Test"}, concrete.Headers.Keys())
	assert.Equal(suite.T(), []string{"q"}, concrete.Body.Keys())
}

func (suite *RequestTestSuite) TestMaterializePromptsForMissingValues() {
	prompter := &scriptedPrompter{
		values: map[string]string{"otp": "123456", "PHPSESSID": "s1"},
		names:  map[string]string{"^PHP.*": "PHPSESSID"},
	}
	cookie, err := plugin.CookieRegex("^PHP.*")
	require.NoError(suite.T(), err)
	tmpl, err := NewTemplate("POST", Lit("https://example.com"),
		WithCookies(cookie),
		WithBody(BodyJSON, NewBody().Set("otp", Ref(plugin.Variable("otp")))))
	require.NoError(suite.T(), err)

	concrete, err := NewMaterializer(prompter, "").Materialize(context.Background(), tmpl, suite.sess)
	require.NoError(suite.T(), err)

	value, _ := concrete.Cookies.Get("PHPSESSID")
	assert.Equal(suite.T(), "s1", value)
	value, _ = concrete.Body.Get("otp")
	assert.Equal(suite.T(), "123456", value)
	assert.Equal(suite.T(), []string{"Cookie?^PHP.*", "Cookie:PHPSESSID", "Plugin:otp"}, prompter.asked)

	cookies := suite.sess.Entries(session.NamespaceCookie)
	assert.Equal(suite.T(), []session.Entry{{Name: "PHPSESSID", Value: "s1"}}, cookies)
}

func (suite *RequestTestSuite) TestResponseBoundInputFallsBackToSession() {
	suite.sess.SetCookie("session", "from-store")
	tmpl, err := NewTemplate("GET", Lit("https://example.com"), WithCookies(plugin.Cookie("session")))
	require.NoError(suite.T(), err)

	concrete, err := NewMaterializer(nil, "").Materialize(context.Background(), tmpl, suite.sess)
	require.NoError(suite.T(), err)
	value, _ := concrete.Cookies.Get("session")
	assert.Equal(suite.T(), "from-store", value)
}

func (suite *RequestTestSuite) TestURLFromPlugin() {
	location := plugin.Literal("location", "https://example.com/next")
	tmpl, err := NewTemplate("GET", Ref(location))
	require.NoError(suite.T(), err)

	concrete, err := NewMaterializer(nil, "").Materialize(context.Background(), tmpl, suite.sess)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://example.com/next", concrete.URL)

	empty, err := NewTemplate("GET", Ref(plugin.Empty("location")))
	require.NoError(suite.T(), err)
	_, err = NewMaterializer(nil, "").Materialize(context.Background(), empty, suite.sess)
	assert.True(suite.T(), errors.Is(err, ErrMissingURL))
}

func (suite *RequestTestSuite) TestNestedBodyAndPluginKeys() {
	key := plugin.Literal("field", "username")
	tmpl, err := NewTemplate("POST", Lit("https://example.com/api"),
		WithBody(BodyJSON, NewBody().
			Set("client", Lit("web")).
			Set("credentials", Nested(NewBody().
				Add(Ref(key), Ref(plugin.Variable("username"))).
				Set("password", Ref(plugin.Variable("password")))))))
	require.NoError(suite.T(), err)

	concrete, err := NewMaterializer(nil, "").Materialize(context.Background(), tmpl, suite.sess)
	require.NoError(suite.T(), err)

	req, err := concrete.Build(context.Background())
	require.NoError(suite.T(), err)
	body, _ := io.ReadAll(req.Body)
	assert.JSONEq(suite.T(), `{"client":"web","credentials":{"username":"alice","password":"s3cret"}}`,
		string(body))
	assert.Equal(suite.T(), "application/json", req.Header.Get("Content-Type"))
}

func (suite *RequestTestSuite) TestBuildEncodings() {
	base, err := NewTemplate("POST", Lit("https://example.com/login?x=1"),
		WithHeaders(plugin.HeaderLiteral("X-Test", "1")),
		WithCookies(plugin.CookieLiteral("sid", "abc")),
		WithBody(BodyForm, NewBody().Set("user", Lit("a b")).Set("next", Lit("/home&x"))))
	require.NoError(suite.T(), err)
	m := NewMaterializer(nil, "raider-test")

	suite.T().Run("form", func(t *testing.T) {
		concrete, err := m.Materialize(context.Background(), base, suite.sess)
		require.NoError(t, err)
		req, err := concrete.Build(context.Background())
		require.NoError(t, err)
		body, _ := io.ReadAll(req.Body)
		assert.Equal(t, "user=a+b&next=%2Fhome%26x", string(body))
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
		assert.Equal(t, "raider-test", req.Header.Get("User-Agent"))
		assert.Equal(t, "1", req.Header.Get("X-Test"))
		cookie, err := req.Cookie("sid")
		require.NoError(t, err)
		assert.Equal(t, "abc", cookie.Value)
	})

	suite.T().Run("params", func(t *testing.T) {
		tmpl, err := base.Clone(WithMethod("GET"), WithBody(BodyParams, NewBody().Set("q", Lit("a b"))))
		require.NoError(t, err)
		concrete, err := m.Materialize(context.Background(), tmpl, suite.sess)
		require.NoError(t, err)
		req, err := concrete.Build(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "x=1&q=a+b", req.URL.RawQuery)
		assert.Nil(t, req.Body)
	})

	suite.T().Run("multipart", func(t *testing.T) {
		tmpl, err := base.Clone(WithBody(BodyMultipart, NewBody().Set("file", Lit("content"))))
		require.NoError(t, err)
		concrete, err := m.Materialize(context.Background(), tmpl, suite.sess)
		require.NoError(t, err)
		req, err := concrete.Build(context.Background())
		require.NoError(t, err)
		require.NoError(t, req.ParseMultipartForm(1<<20))
		assert.Equal(t, "content", req.FormValue("file"))
	})

	suite.T().Run("raw", func(t *testing.T) {
		tmpl, err := base.Clone(WithPayload(BodyRaw, plugin.Literal("payload", "<xml/>")))
		require.NoError(t, err)
		concrete, err := m.Materialize(context.Background(), tmpl, suite.sess)
		require.NoError(t, err)
		req, err := concrete.Build(context.Background())
		require.NoError(t, err)
		body, _ := io.ReadAll(req.Body)
		assert.Equal(t, "<xml/>", string(body))
	})

	suite.T().Run("invalid json payload", func(t *testing.T) {
		tmpl, err := base.Clone(WithPayload(BodyJSON, plugin.Literal("payload", "{not json")))
		require.NoError(t, err)
		concrete, err := m.Materialize(context.Background(), tmpl, suite.sess)
		require.NoError(t, err)
		_, err = concrete.Build(context.Background())
		assert.Error(t, err)
	})
}

func (suite *RequestTestSuite) TestBuildRejectsRelativeURL() {
	concrete := &Concrete{Method: "GET", URL: "/relative"}
	_, err := concrete.Build(context.Background())
	assert.True(suite.T(), errors.Is(err, ErrMissingURL))
}

func (suite *RequestTestSuite) TestCloneIsIndependent() {
	base, err := NewTemplate("POST", Lit("https://example.com"),
		WithHeaders(plugin.HeaderLiteral("X-A", "1")),
		WithBody(BodyForm, NewBody().Set("a", Lit("1"))))
	require.NoError(suite.T(), err)

	derived, err := base.Clone(WithHeaders(plugin.HeaderLiteral("X-B", "2")),
		WithURL(Lit("https://example.com/other")))
	require.NoError(suite.T(), err)

	assert.Len(suite.T(), base.Headers(), 1)
	assert.Len(suite.T(), derived.Headers(), 2)
	assert.Equal(suite.T(), BodyForm, derived.BodyKind())

	_, err = base.Clone(WithMethod(""))
	assert.True(suite.T(), errors.Is(err, ErrMissingMethod))
}

func (suite *RequestTestSuite) TestCloneMergesHeadersAndCookiesByName() {
	inherited := plugin.HeaderLiteral("Authorization", "Basic old")
	accept := plugin.HeaderLiteral("Accept", "text/html")
	base, err := NewTemplate("GET", Lit("https://example.com"),
		WithHeaders(inherited, accept),
		WithCookies(plugin.CookieLiteral("sid", "a")))
	require.NoError(suite.T(), err)

	override := plugin.HeaderLiteral("authorization", "Bearer new")
	sid := plugin.CookieLiteral("sid", "b")
	derived, err := base.Clone(
		WithHeaders(override, plugin.HeaderLiteral("X-B", "2")),
		WithCookies(sid, plugin.CookieLiteral("lang", "en")))
	require.NoError(suite.T(), err)

	require.Len(suite.T(), derived.Headers(), 3)
	assert.Same(suite.T(), override, derived.Headers()[0])
	assert.Same(suite.T(), accept, derived.Headers()[1])
	assert.Equal(suite.T(), "X-B", derived.Headers()[2].Name())
	require.Len(suite.T(), derived.Cookies(), 2)
	assert.Same(suite.T(), sid, derived.Cookies()[0])
	assert.Equal(suite.T(), "lang", derived.Cookies()[1].Name())

	assert.Same(suite.T(), inherited, base.Headers()[0])
	assert.Len(suite.T(), base.Cookies(), 1)
}

func (suite *RequestTestSuite) TestInputs() {
	token := plugin.Literal("token", "t")
	bearer := plugin.BearerAuth(token)
	user := plugin.Variable("username")
	tmpl, err := NewTemplate("POST", Lit("https://example.com"),
		WithHeaders(bearer),
		WithBody(BodyJSON, NewBody().Set("u", Ref(user)).Set("n", Nested(NewBody().Set("u2", Ref(user))))))
	require.NoError(suite.T(), err)

	names := make([]string, 0)
	for _, p := range tmpl.Inputs() {
		names = append(names, p.Name())
	}
	assert.Equal(suite.T(), []string{"Authorization", "username", "token"}, names)

	found, ok := tmpl.Lookup("token")
	assert.True(suite.T(), ok)
	assert.Same(suite.T(), token, found)
	_, ok = tmpl.Lookup("missing")
	assert.False(suite.T(), ok)
}

func (suite *RequestTestSuite) TestBodyKindNames() {
	names := []string{}
	for _, k := range []BodyKind{BodyNone, BodyParams, BodyForm, BodyJSON, BodyMultipart, BodyRaw} {
		names = append(names, k.String())
	}
	assert.Equal(suite.T(), "none,params,data,json,multipart,raw", strings.Join(names, ","))

	for _, name := range names {
		kind, err := ParseBodyKind(name)
		assert.NoError(suite.T(), err)
		assert.Equal(suite.T(), name, kind.String())
	}
	kind, err := ParseBodyKind("Form")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), BodyForm, kind)
	_, err = ParseBodyKind("xml")
	assert.Error(suite.T(), err)
}
