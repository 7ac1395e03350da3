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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/raider/internal/system/constants"
)

const testResourceDir = "../../../tests/resources"

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) getFilePath(filename string) string {
	return filepath.Join(testResourceDir, filename)
}

func (suite *ConfigTestSuite) TestLoadConfigValid() {
	config, err := LoadConfig(suite.getFilePath("raider.yaml"))

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), config)

	assert.Equal(suite.T(), "http://127.0.0.1:8081", config.HTTP.Proxy)
	assert.True(suite.T(), config.HTTP.UseProxy)
	assert.True(suite.T(), config.HTTP.Verify)
	assert.Equal(suite.T(), "raider-test/1.0", config.HTTP.UserAgent)
	assert.Equal(suite.T(), 10, config.HTTP.Timeout)

	assert.Equal(suite.T(), "projects", config.Project.Directory)
	assert.Equal(suite.T(), "example", config.Project.Active)
	assert.Equal(suite.T(), "alice", config.Project.ActiveUser)

	assert.Equal(suite.T(), "sqlite", config.Database.Session.Type)
	assert.Equal(suite.T(), "data/sessions.db", config.Database.Session.Path)
	assert.Equal(suite.T(), "out", config.Output.Directory)
}

func (suite *ConfigTestSuite) TestLoadConfigKeepsDefaults() {
	config, err := LoadConfig(suite.getFilePath("minimal_raider.yaml"))

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "custom-agent", config.HTTP.UserAgent)
	assert.False(suite.T(), config.HTTP.Verify)
	assert.Equal(suite.T(), constants.DefaultHTTPTimeoutSeconds, config.HTTP.Timeout)
	assert.Equal(suite.T(), "sqlite", config.Database.Session.Type)
	assert.Equal(suite.T(), "sessions.db", config.Database.Session.Path)
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	config := DefaultConfig()

	assert.False(suite.T(), config.HTTP.UseProxy)
	assert.False(suite.T(), config.HTTP.Verify)
	assert.Equal(suite.T(), constants.DefaultUserAgent, config.HTTP.UserAgent)
	assert.Equal(suite.T(), "projects", config.Project.Directory)
}

func (suite *ConfigTestSuite) TestLoadConfigFileNotFound() {
	config, err := LoadConfig(suite.getFilePath("non_existent_config.yaml"))

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), config)
	assert.Contains(suite.T(), err.Error(), "no such file or directory")
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidYAML() {
	config, err := LoadConfig(suite.getFilePath("invalid_raider.yaml"))

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), config)
}
