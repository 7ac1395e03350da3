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

// Package prompt provides the interactive fallback used when a value or a name cannot be resolved.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// PrompterInterface asks the operator for a value. An empty answer means "skip".
type PrompterInterface interface {
	// PromptValue asks for the value of the named element, such as a cookie or a header.
	PromptValue(kind, name string) (string, error)
	// PromptName asks for the real name of an element whose name was not known in advance.
	PromptName(kind, pattern string) (string, error)
}

// TerminalPrompter reads answers line by line from an input stream.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter creates a prompter over the given streams.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

// NewDefaultPrompter returns a terminal prompter when stdin is a terminal and a non-interactive
// prompter otherwise, so that unattended runs never block on input.
func NewDefaultPrompter() PrompterInterface {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return NewTerminalPrompter(os.Stdin, os.Stderr)
	}
	return NonInteractivePrompter{}
}

// PromptValue asks for the value of an element.
func (p *TerminalPrompter) PromptValue(kind, name string) (string, error) {
	_, err := fmt.Fprintf(p.out, "%s %q has an empty value. Input its value manually (enter to skip)\n%s = ",
		kind, name, name)
	if err != nil {
		return "", err
	}
	return p.readLine()
}

// PromptName asks for the name of an element matched by a pattern.
func (p *TerminalPrompter) PromptName(kind, pattern string) (string, error) {
	_, err := fmt.Fprintf(p.out,
		"%s name %q has a value not known in advance. Input its name manually (enter to skip)\n%s = ",
		kind, pattern, pattern)
	if err != nil {
		return "", err
	}
	return p.readLine()
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NonInteractivePrompter answers every question with an empty value.
type NonInteractivePrompter struct{}

// PromptValue always skips.
func (NonInteractivePrompter) PromptValue(kind, name string) (string, error) {
	return "", nil
}

// PromptName always skips.
func (NonInteractivePrompter) PromptName(kind, pattern string) (string, error) {
	return "", nil
}
