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

package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PromptTestSuite struct {
	suite.Suite
}

func TestPromptSuite(t *testing.T) {
	suite.Run(t, new(PromptTestSuite))
}

func (suite *PromptTestSuite) TestPromptValue() {
	out := &bytes.Buffer{}
	prompter := NewTerminalPrompter(strings.NewReader("abc123\n"), out)

	value, err := prompter.PromptValue("Cookie", "session")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "abc123", value)
	assert.Contains(suite.T(), out.String(), `Cookie "session" has an empty value`)
}

func (suite *PromptTestSuite) TestPromptNameThenValue() {
	out := &bytes.Buffer{}
	prompter := NewTerminalPrompter(strings.NewReader("PHPSESSID\r\nxyz\n"), out)

	name, err := prompter.PromptName("Cookie", "^PHP.*")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "PHPSESSID", name)

	value, err := prompter.PromptValue("Cookie", name)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "xyz", value)
}

func (suite *PromptTestSuite) TestPromptAtEOF() {
	prompter := NewTerminalPrompter(strings.NewReader(""), &bytes.Buffer{})

	value, err := prompter.PromptValue("Header", "X-Token")
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), value)
}

func (suite *PromptTestSuite) TestNonInteractivePrompter() {
	var prompter PrompterInterface = NonInteractivePrompter{}

	value, err := prompter.PromptValue("Plugin", "token")
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), value)

	name, err := prompter.PromptName("Header", "X-.*")
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), name)
}
