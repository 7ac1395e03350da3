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

// Package session holds the per-identity context that plugins read from and write to.
package session

import (
	"github.com/Velocidex/ordereddict"
)

// Namespace partitions the values stored in a session.
type Namespace string

const (
	// NamespaceCookie holds cookie values.
	NamespaceCookie Namespace = "cookie"
	// NamespaceHeader holds header values.
	NamespaceHeader Namespace = "header"
	// NamespaceData holds every other extracted or resolved value.
	NamespaceData Namespace = "data"
)

const (
	usernameKey = "username"
	passwordKey = "password"
)

// Entry is a single named value of a namespace.
type Entry struct {
	Name  string
	Value string
}

// Session is the user context of a run: credentials plus the last known cookies, headers and
// data values. Insertion order of every namespace is preserved.
type Session struct {
	Username string
	Password string
	cookies  *ordereddict.Dict
	headers  *ordereddict.Dict
	data     *ordereddict.Dict
}

// NewSession creates an empty session for the given credentials.
func NewSession(username, password string) *Session {
	return &Session{
		Username: username,
		Password: password,
		cookies:  ordereddict.NewDict(),
		headers:  ordereddict.NewDict(),
		data:     ordereddict.NewDict(),
	}
}

// Get looks a name up across the session. Data wins over headers, headers over cookies, and
// cookies over the credentials.
func (s *Session) Get(name string) (string, bool) {
	for _, dict := range []*ordereddict.Dict{s.data, s.headers, s.cookies} {
		if value, ok := getString(dict, name); ok {
			return value, true
		}
	}
	switch name {
	case passwordKey:
		return s.Password, s.Password != ""
	case usernameKey:
		return s.Username, s.Username != ""
	}
	return "", false
}

// SetCookie stores a cookie value.
func (s *Session) SetCookie(name, value string) {
	s.cookies.Update(name, value)
}

// SetHeader stores a header value.
func (s *Session) SetHeader(name, value string) {
	s.headers.Update(name, value)
}

// SetData stores a generic data value.
func (s *Session) SetData(name, value string) {
	s.data.Update(name, value)
}

// Set stores a value in the given namespace. Unknown namespaces are stored as data.
func (s *Session) Set(namespace Namespace, name, value string) {
	s.dict(namespace).Update(name, value)
}

// Delete removes a name from a namespace.
func (s *Session) Delete(namespace Namespace, name string) {
	s.dict(namespace).Delete(name)
}

// Entries returns the ordered entries of a namespace.
func (s *Session) Entries(namespace Namespace) []Entry {
	dict := s.dict(namespace)
	entries := make([]Entry, 0, dict.Len())
	for _, key := range dict.Keys() {
		value, _ := getString(dict, key)
		entries = append(entries, Entry{Name: key, Value: value})
	}
	return entries
}

// ToMap flattens the session into one mapping, applying the same precedence as Get.
func (s *Session) ToMap() map[string]string {
	result := map[string]string{
		usernameKey: s.Username,
		passwordKey: s.Password,
	}
	for _, namespace := range []Namespace{NamespaceCookie, NamespaceHeader, NamespaceData} {
		for _, entry := range s.Entries(namespace) {
			result[entry.Name] = entry.Value
		}
	}
	return result
}

func (s *Session) dict(namespace Namespace) *ordereddict.Dict {
	switch namespace {
	case NamespaceCookie:
		return s.cookies
	case NamespaceHeader:
		return s.headers
	default:
		return s.data
	}
}

func getString(dict *ordereddict.Dict, name string) (string, bool) {
	value, ok := dict.Get(name)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}
