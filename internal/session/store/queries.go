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
	"github.com/asgardeo/raider/internal/system/database/model"
)

var (
	// QueryInsertSessionEntry is the query to insert one namespace entry of a session.
	QueryInsertSessionEntry = model.DBQuery{
		ID: "SSQ-SESSION_ENTRY-01",
		Query: "INSERT INTO SESSION_ENTRY (SESSION_ID, PROJECT, USERNAME, NAMESPACE, NAME, VALUE, POSITION) " +
			"VALUES ($1, $2, $3, $4, $5, $6, $7)",
	}

	// QueryGetSessionEntries is the query to get the entries of a session in insertion order.
	QueryGetSessionEntries = model.DBQuery{
		ID: "SSQ-SESSION_ENTRY-02",
		Query: "SELECT SESSION_ID, NAMESPACE, NAME, VALUE FROM SESSION_ENTRY " +
			"WHERE PROJECT = $1 AND USERNAME = $2 ORDER BY POSITION",
	}

	// QueryDeleteSessionEntries is the query to delete every entry of a session.
	QueryDeleteSessionEntries = model.DBQuery{
		ID:    "SSQ-SESSION_ENTRY-03",
		Query: "DELETE FROM SESSION_ENTRY WHERE PROJECT = $1 AND USERNAME = $2",
	}
)
