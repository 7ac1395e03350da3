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

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/raider/internal/session"
	"github.com/asgardeo/raider/internal/system/database/client"
	"github.com/asgardeo/raider/internal/system/database/model"
	"github.com/asgardeo/raider/tests/mocks/databasemock"
)

type SessionStoreTestSuite struct {
	suite.Suite
	dbClient *databasemock.MockDBClient
	tx       *databasemock.MockTx
	provider *databasemock.MockDBProvider
	store    *SessionStore
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreTestSuite))
}

func (suite *SessionStoreTestSuite) SetupTest() {
	suite.tx = &databasemock.MockTx{}
	suite.dbClient = &databasemock.MockDBClient{
		MockBeginTx: func() (model.TxInterface, error) {
			return suite.tx, nil
		},
	}
	suite.provider = &databasemock.MockDBProvider{
		MockGetDBClient: func(string) (client.DBClientInterface, error) {
			return suite.dbClient, nil
		},
	}
	suite.store = NewSessionStore(suite.provider)
}

func (suite *SessionStoreTestSuite) TestSave() {
	sess := session.NewSession("alice", "s3cret")
	sess.SetCookie("session", "s1")
	sess.SetHeader("Authorization", "Bearer t")
	sess.SetData("csrf", "tok1")

	sessionID, err := suite.store.Save(context.Background(), "demo", sess)
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), sessionID)

	require.Len(suite.T(), suite.tx.ExecuteCalls, 4)
	assert.Equal(suite.T(), QueryDeleteSessionEntries.ID, suite.tx.ExecuteCalls[0].Query.ID)
	assert.Equal(suite.T(), []interface{}{"demo", "alice"}, suite.tx.ExecuteCalls[0].Args)
	assert.Equal(suite.T(), []interface{}{sessionID, "demo", "alice", "cookie", "session", "s1", 0},
		suite.tx.ExecuteCalls[1].Args)
	assert.Equal(suite.T(), []interface{}{sessionID, "demo", "alice", "header", "Authorization", "Bearer t", 1},
		suite.tx.ExecuteCalls[2].Args)
	assert.Equal(suite.T(), []interface{}{sessionID, "demo", "alice", "data", "csrf", "tok1", 2},
		suite.tx.ExecuteCalls[3].Args)
	assert.Equal(suite.T(), 1, suite.tx.CommitCalls)
	assert.Equal(suite.T(), 0, suite.tx.RollbackCalls)
	assert.Equal(suite.T(), []string{"session"}, suite.provider.GetDBClientCalls)
}

func (suite *SessionStoreTestSuite) TestSaveRollsBackOnFailure() {
	suite.tx.MockExecute = func(query model.DBQuery, _ ...interface{}) (int64, error) {
		if query.ID == QueryInsertSessionEntry.ID {
			return 0, errors.New("disk full")
		}
		return 0, nil
	}
	sess := session.NewSession("alice", "")
	sess.SetCookie("session", "s1")

	_, err := suite.store.Save(context.Background(), "demo", sess)
	assert.ErrorContains(suite.T(), err, "disk full")
	assert.Equal(suite.T(), 1, suite.tx.RollbackCalls)
	assert.Equal(suite.T(), 0, suite.tx.CommitCalls)
}

func (suite *SessionStoreTestSuite) TestSaveRequiresUsername() {
	_, err := suite.store.Save(context.Background(), "demo", session.NewSession("", ""))
	assert.Error(suite.T(), err)
	assert.Empty(suite.T(), suite.provider.GetDBClientCalls)
}

func (suite *SessionStoreTestSuite) TestSaveProviderError() {
	suite.provider.MockGetDBClient = func(string) (client.DBClientInterface, error) {
		return nil, errors.New("no database")
	}
	_, err := suite.store.Save(context.Background(), "demo", session.NewSession("alice", ""))
	assert.ErrorContains(suite.T(), err, "no database")
}

func (suite *SessionStoreTestSuite) TestLoad() {
	suite.dbClient.MockQuery = func(query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
		assert.Equal(suite.T(), QueryGetSessionEntries.ID, query.ID)
		assert.Equal(suite.T(), []interface{}{"demo", "alice"}, args)
		return []map[string]interface{}{
			{"session_id": "id1", "namespace": "cookie", "name": "session", "value": "s1"},
			{"session_id": "id1", "namespace": "data", "name": "csrf", "value": "tok1"},
			{"session_id": "id1", "namespace": "data", "name": "nonce", "value": nil},
		}, nil
	}

	sess, err := suite.store.Load(context.Background(), "demo", "alice")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), sess)
	assert.Equal(suite.T(), "alice", sess.Username)
	assert.Equal(suite.T(), []session.Entry{{Name: "session", Value: "s1"}},
		sess.Entries(session.NamespaceCookie))
	assert.Equal(suite.T(), []session.Entry{{Name: "csrf", Value: "tok1"}, {Name: "nonce", Value: ""}},
		sess.Entries(session.NamespaceData))
}

func (suite *SessionStoreTestSuite) TestLoadNotFound() {
	sess, err := suite.store.Load(context.Background(), "demo", "bob")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), sess)
}

func (suite *SessionStoreTestSuite) TestLoadInvalidRow() {
	suite.dbClient.MockQuery = func(model.DBQuery, ...interface{}) ([]map[string]interface{}, error) {
		return []map[string]interface{}{{"session_id": "id1", "namespace": 3}}, nil
	}
	_, err := suite.store.Load(context.Background(), "demo", "alice")
	assert.EqualError(suite.T(), err, "failed to parse namespace as string")
}

func (suite *SessionStoreTestSuite) TestDelete() {
	require.NoError(suite.T(), suite.store.Delete(context.Background(), "demo", "alice"))
	require.Len(suite.T(), suite.dbClient.ExecuteCalls, 1)
	assert.Equal(suite.T(), QueryDeleteSessionEntries.ID, suite.dbClient.ExecuteCalls[0].Query.ID)

	suite.dbClient.MockExecute = func(model.DBQuery, ...interface{}) (int64, error) {
		return 0, errors.New("locked")
	}
	assert.ErrorContains(suite.T(), suite.store.Delete(context.Background(), "demo", "alice"), "locked")
}
