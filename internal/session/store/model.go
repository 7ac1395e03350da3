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
	"errors"
	"fmt"
)

// EntryRow is one stored namespace entry of a session.
type EntryRow struct {
	SessionID string
	Project   string
	Username  string
	Namespace string
	Name      string
	Value     string
	Position  int
}

// buildEntryFromResultRow builds an EntryRow from a database result row.
func buildEntryFromResultRow(row map[string]interface{}) (*EntryRow, error) {
	sessionID, ok := row["session_id"].(string)
	if !ok {
		return nil, errors.New("failed to parse session_id as string")
	}
	namespace, ok := row["namespace"].(string)
	if !ok {
		return nil, errors.New("failed to parse namespace as string")
	}
	name, ok := row["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("failed to parse name of session %s", sessionID)
	}

	return &EntryRow{
		SessionID: sessionID,
		Namespace: namespace,
		Name:      name,
		Value:     parseOptionalString(row["value"]),
	}, nil
}

// parseOptionalString reads a nullable text column.
func parseOptionalString(value interface{}) string {
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
