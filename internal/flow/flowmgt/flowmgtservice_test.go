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

package flowmgt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/raider/internal/flow/constants"
	"github.com/asgardeo/raider/internal/flow/definition"
)

const testProjectDir = "../../../tests/resources/projects"

type FlowMgtServiceTestSuite struct {
	suite.Suite
	service *FlowMgtService
}

func TestFlowMgtServiceSuite(t *testing.T) {
	suite.Run(t, new(FlowMgtServiceTestSuite))
}

func (suite *FlowMgtServiceTestSuite) SetupTest() {
	suite.service = NewFlowMgtService()
}

func (suite *FlowMgtServiceTestSuite) TestInitLoadsProjectFiles() {
	require.NoError(suite.T(), suite.service.Init(testProjectDir))

	assert.Equal(suite.T(), []string{"demo", "shop"}, suite.service.ProjectNames())

	demo, svcErr := suite.service.GetProject("demo")
	require.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), []string{"initialization", "login"}, demo.Graph.FlowNames())
	assert.Equal(suite.T(), []string{"authenticate"}, demo.Graph.GraphNames())

	shop, svcErr := suite.service.GetProject("shop")
	require.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), []string{"home"}, shop.Graph.FlowNames())
}

func (suite *FlowMgtServiceTestSuite) TestGetProjectNotFound() {
	project, svcErr := suite.service.GetProject("missing")
	assert.Nil(suite.T(), project)
	require.NotNil(suite.T(), svcErr)
	assert.Equal(suite.T(), constants.ErrorProjectNotFound.Code, svcErr.Code)
	assert.Contains(suite.T(), svcErr.ErrorDescription, "missing")
}

func (suite *FlowMgtServiceTestSuite) TestInitWithoutDirectory() {
	assert.NoError(suite.T(), suite.service.Init(""))
	assert.NoError(suite.T(), suite.service.Init(filepath.Join(suite.T().TempDir(), "absent")))
	assert.Empty(suite.T(), suite.service.ProjectNames())
}

func (suite *FlowMgtServiceTestSuite) TestInitOnFile() {
	path := filepath.Join(suite.T().TempDir(), "file.yaml")
	require.NoError(suite.T(), os.WriteFile(path, []byte("name: x"), 0o600))
	assert.Error(suite.T(), suite.service.Init(path))
}

func (suite *FlowMgtServiceTestSuite) TestRegisterProjectReplaces() {
	first, err := definition.Build(&definition.ProjectDefinition{Name: "p"})
	require.NoError(suite.T(), err)
	second, err := definition.Build(&definition.ProjectDefinition{Name: "p"})
	require.NoError(suite.T(), err)

	suite.service.RegisterProject(first)
	suite.service.RegisterProject(second)

	project, svcErr := suite.service.GetProject("p")
	require.Nil(suite.T(), svcErr)
	assert.Same(suite.T(), second, project)
}

func (suite *FlowMgtServiceTestSuite) TestIsProjectFile() {
	assert.True(suite.T(), isProjectFile("a.yaml"))
	assert.True(suite.T(), isProjectFile("a.YML"))
	assert.False(suite.T(), isProjectFile("a.json"))
}
