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

// Package store persists sessions so that a later run can resume an authenticated state.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/asgardeo/raider/internal/session"
	"github.com/asgardeo/raider/internal/system/database/provider"
	"github.com/asgardeo/raider/internal/system/log"
)

const loggerComponentName = "SessionStore"

var namespaces = []session.Namespace{session.NamespaceCookie, session.NamespaceHeader, session.NamespaceData}

// SessionStoreInterface defines the session persistence operations.
type SessionStoreInterface interface {
	Save(ctx context.Context, project string, sess *session.Session) (string, error)
	Load(ctx context.Context, project, username string) (*session.Session, error)
	Delete(ctx context.Context, project, username string) error
}

// SessionStore stores sessions as SESSION_ENTRY rows, one row per namespace entry.
type SessionStore struct {
	dbProvider provider.DBProviderInterface
}

// NewSessionStore creates a store over the session data source of the provider.
func NewSessionStore(dbProvider provider.DBProviderInterface) *SessionStore {
	return &SessionStore{dbProvider: dbProvider}
}

// Save replaces the stored session of the user in a single transaction and returns the new
// session ID.
func (s *SessionStore) Save(ctx context.Context, project string, sess *session.Session) (string, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
	if sess == nil || sess.Username == "" {
		return "", errors.New("session without a username cannot be stored")
	}

	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceSession)
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return "", fmt.Errorf("failed to get database client: %w", err)
	}

	tx, err := dbClient.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	sessionID := uuid.New().String()
	rows := []EntryRow{}
	position := 0
	for _, namespace := range namespaces {
		for _, entry := range sess.Entries(namespace) {
			rows = append(rows, EntryRow{
				SessionID: sessionID,
				Project:   project,
				Username:  sess.Username,
				Namespace: string(namespace),
				Name:      entry.Name,
				Value:     entry.Value,
				Position:  position,
			})
			position++
		}
	}

	if _, err := tx.Execute(ctx, QueryDeleteSessionEntries, project, sess.Username); err != nil {
		return "", rollback(tx, fmt.Errorf("failed to delete previous session: %w", err))
	}
	for _, row := range rows {
		if _, err := tx.Execute(ctx, QueryInsertSessionEntry, row.SessionID, row.Project, row.Username,
			row.Namespace, row.Name, row.Value, row.Position); err != nil {
			return "", rollback(tx, fmt.Errorf("failed to store session entry %s: %w", row.Name, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}

	logger.Debug("Stored session", log.String("project", project),
		log.String("username", log.MaskString(sess.Username)), log.Int("entries", len(rows)))
	return sessionID, nil
}

// Load returns the stored session of the user, or nil when none exists. Credentials are not
// stored; the returned session only carries the username.
func (s *SessionStore) Load(ctx context.Context, project, username string) (*session.Session, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceSession)
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(ctx, QueryGetSessionEntries, project, username)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		logger.Debug("Session not found", log.String("project", project))
		return nil, nil
	}

	sess := session.NewSession(username, "")
	for _, result := range results {
		row, err := buildEntryFromResultRow(result)
		if err != nil {
			return nil, err
		}
		sess.Set(session.Namespace(row.Namespace), row.Name, row.Value)
	}
	return sess, nil
}

// Delete removes the stored session of the user.
func (s *SessionStore) Delete(ctx context.Context, project, username string) error {
	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceSession)
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}
	if _, err := dbClient.Execute(ctx, QueryDeleteSessionEntries, project, username); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func rollback(tx interface{ Rollback() error }, cause error) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("%w (rollback error: %w)", cause, err)
	}
	return cause
}

var _ SessionStoreInterface = (*SessionStore)(nil)
