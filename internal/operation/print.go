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

package operation

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/asgardeo/raider/internal/plugin"
	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// PrintItem is one element printed by Print: either a plain text line or a plugin value.
type PrintItem struct {
	text   string
	plugin *plugin.Plugin
}

// Text creates a plain text print item.
func Text(s string) PrintItem {
	return PrintItem{text: s}
}

// Value creates a print item showing a plugin as "name = value".
func Value(p *plugin.Plugin) PrintItem {
	return PrintItem{plugin: p}
}

// Print creates an operation printing each item on its own line.
func Print(items ...PrintItem) *Operation {
	var plugins []*plugin.Plugin
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.plugin != nil {
			plugins = append(plugins, item.plugin)
			names = append(names, item.plugin.Name())
		} else {
			names = append(names, item.text)
		}
	}
	return &Operation{
		kind:          KindPrintDebug,
		needsUserData: true,
		description:   strings.Join(names, ","),
		plugins:       plugins,
		effect: func(env *Env, _ *httpservice.Response) error {
			out := env.output()
			for _, item := range items {
				if item.plugin == nil {
					if _, err := fmt.Fprintln(out, item.text); err != nil {
						return err
					}
					continue
				}
				value, _ := item.plugin.Value()
				if _, err := fmt.Fprintf(out, "%s = %s\n", item.plugin.Name(), value); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// PrintBody creates an operation printing the response body.
func PrintBody() *Operation {
	return &Operation{
		kind:          KindPrintDebug,
		needsResponse: true,
		description:   "body",
		effect: func(env *Env, resp *httpservice.Response) error {
			_, err := fmt.Fprintf(env.output(), "\nHTTP response body (%s):\n%s\n", resp.Size(), resp.Text())
			return err
		},
	}
}

// PrintHeaders creates an operation printing the named response headers, or all of them.
func PrintHeaders(names ...string) *Operation {
	return &Operation{
		kind:          KindPrintDebug,
		needsResponse: true,
		description:   "headers",
		effect: func(env *Env, resp *httpservice.Response) error {
			rows := headerRows(resp.Header, names)
			return printTable(env.output(), "HTTP response headers:", rows)
		},
	}
}

// PrintCookies creates an operation printing the named response cookies, or all of them.
func PrintCookies(names ...string) *Operation {
	return &Operation{
		kind:          KindPrintDebug,
		needsResponse: true,
		description:   "cookies",
		effect: func(env *Env, resp *httpservice.Response) error {
			rows := cookieRows(resp.Cookies, names)
			return printTable(env.output(), "HTTP response cookies:", rows)
		},
	}
}

// PrintAll creates an operation dumping the status line, headers and body.
func PrintAll() *Operation {
	return &Operation{
		kind:          KindPrintDebug,
		needsResponse: true,
		description:   "all",
		effect: func(env *Env, resp *httpservice.Response) error {
			out := env.output()
			if _, err := fmt.Fprintf(out, "%s %s\n", resp.Proto, resp.Status); err != nil {
				return err
			}
			for _, name := range sortedHeaderNames(resp.Header) {
				for _, value := range resp.Header.Values(name) {
					if _, err := fmt.Fprintf(out, "%s: %s\n", name, value); err != nil {
						return err
					}
				}
			}
			_, err := fmt.Fprintf(out, "\n%s\n", resp.Text())
			return err
		},
	}
}

func headerRows(header http.Header, names []string) [][]string {
	if len(names) == 0 {
		names = sortedHeaderNames(header)
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		if value := header.Get(name); value != "" {
			rows = append(rows, []string{name, value})
		}
	}
	return rows
}

func cookieRows(cookies []*http.Cookie, names []string) [][]string {
	rows := make([][]string, 0, len(cookies))
	if len(names) == 0 {
		for _, c := range cookies {
			rows = append(rows, []string{c.Name, c.Value})
		}
		return rows
	}
	for _, name := range names {
		for _, c := range cookies {
			if c.Name == name && c.Value != "" {
				rows = append(rows, []string{c.Name, c.Value})
				break
			}
		}
	}
	return rows
}

func sortedHeaderNames(header http.Header) []string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printTable(out io.Writer, title string, rows [][]string) error {
	if _, err := fmt.Fprintln(out, title); err != nil {
		return err
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Name", "Value"})
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
	return nil
}
