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

// Package model defines the data structures and interfaces for database operations.
package model

import (
	"context"
	"database/sql"
)

const (
	// DBTypePostgres identifies the postgres driver.
	DBTypePostgres = "postgres"
	// DBTypeSQLite identifies the sqlite driver.
	DBTypeSQLite = "sqlite"
)

// DBQuery is a named query with optional per driver variants.
type DBQuery struct {
	ID            string
	Query         string
	PostgresQuery string
	SQLiteQuery   string
}

// GetID returns the query identifier used in logs.
func (d DBQuery) GetID() string {
	return d.ID
}

// GetQuery returns the statement for the given driver, falling back to the generic one.
func (d DBQuery) GetQuery(dbType string) string {
	switch {
	case dbType == DBTypePostgres && d.PostgresQuery != "":
		return d.PostgresQuery
	case dbType == DBTypeSQLite && d.SQLiteQuery != "":
		return d.SQLiteQuery
	}
	return d.Query
}

// DBInterface defines the wrapper interface for database operations.
type DBInterface interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

// NewDB wraps a sql.DB.
func NewDB(db *sql.DB) DBInterface {
	return db
}

// TxInterface defines the wrapper interface for transaction management.
type TxInterface interface {
	Commit() error
	Rollback() error
	// Execute runs a named query inside the transaction and returns the affected row count.
	Execute(ctx context.Context, query DBQuery, args ...any) (int64, error)
}

// Tx is the implementation of TxInterface.
type Tx struct {
	internal *sql.Tx
	dbType   string
}

// NewTx creates a new instance of Tx for the given driver.
func NewTx(tx *sql.Tx, dbType string) TxInterface {
	return &Tx{
		internal: tx,
		dbType:   dbType,
	}
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.internal.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	return t.internal.Rollback()
}

// Execute runs a named query inside the transaction.
func (t *Tx) Execute(ctx context.Context, query DBQuery, args ...any) (int64, error) {
	res, err := t.internal.ExecContext(ctx, query.GetQuery(t.dbType), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
