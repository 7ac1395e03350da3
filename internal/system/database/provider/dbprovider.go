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

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/asgardeo/raider/internal/system/config"
	"github.com/asgardeo/raider/internal/system/database/client"
	"github.com/asgardeo/raider/internal/system/database/model"
	"github.com/asgardeo/raider/internal/system/log"
)

// DataSourceSession is the name of the data source holding persisted sessions.
const DataSourceSession = "session"

// dbConfig represents the local database configuration.
type dbConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient(dbName string) (client.DBClientInterface, error)
	Close() error
}

// DBProvider is the implementation of DBProviderInterface. Clients are opened lazily and
// shared until Close.
type DBProvider struct {
	home          string
	sessionSource config.DataSource
	sessionClient client.DBClientInterface
	mu            sync.Mutex
}

// NewDBProvider creates a provider for the data sources of the given runtime.
func NewDBProvider(runtime *config.RaiderRuntime) *DBProvider {
	return &DBProvider{
		home:          runtime.RaiderHome,
		sessionSource: runtime.Config.Database.Session,
	}
}

// GetDBClient returns a database client based on the provided data source name.
func (d *DBProvider) GetDBClient(dbName string) (client.DBClientInterface, error) {
	if dbName != DataSourceSession {
		return nil, fmt.Errorf("unsupported database name: %s", dbName)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sessionClient != nil {
		return d.sessionClient, nil
	}
	dbClient, err := d.openClient(d.sessionSource)
	if err != nil {
		return nil, err
	}
	d.sessionClient = dbClient
	return dbClient, nil
}

// Close closes every open client.
func (d *DBProvider) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sessionClient == nil {
		return nil
	}
	err := d.sessionClient.Close()
	d.sessionClient = nil
	if err != nil {
		return fmt.Errorf("failed to close %s client: %w", DataSourceSession, err)
	}
	return nil
}

func (d *DBProvider) openClient(dataSource config.DataSource) (client.DBClientInterface, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider"))

	cfg, err := d.getDBConfig(dataSource)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.driverName, cfg.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dataSource.Name, err)
	}

	db.SetMaxOpenConns(dataSource.MaxOpenConns)
	db.SetMaxIdleConns(dataSource.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(dataSource.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database %s: %w (close error: %w)", dataSource.Name, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database %s: %w", dataSource.Name, err)
	}

	if cfg.driverName == model.DBTypeSQLite {
		if _, err := db.Exec(querySQLiteSchema); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to create session schema: %w (close error: %w)", err, closeErr)
			}
			return nil, fmt.Errorf("failed to create session schema: %w", err)
		}
	}

	logger.Debug("Opened database client", log.String("type", cfg.driverName))
	return client.NewDBClient(model.NewDB(db), cfg.driverName), nil
}

// getDBConfig returns the database configuration based on the provided data source.
func (d *DBProvider) getDBConfig(dataSource config.DataSource) (dbConfig, error) {
	switch dataSource.Type {
	case model.DBTypePostgres:
		return dbConfig{
			driverName: model.DBTypePostgres,
			dsn: fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
				dataSource.Name, dataSource.SSLMode),
		}, nil
	case model.DBTypeSQLite:
		options := dataSource.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		dbPath := dataSource.Path
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(d.home, dbPath)
		}
		return dbConfig{driverName: model.DBTypeSQLite, dsn: dbPath + options}, nil
	default:
		return dbConfig{}, fmt.Errorf("unsupported database type: %q", dataSource.Type)
	}
}

// querySQLiteSchema creates the session table of a local database on first use.
const querySQLiteSchema = `CREATE TABLE IF NOT EXISTS SESSION_ENTRY (
	SESSION_ID TEXT NOT NULL,
	PROJECT    TEXT NOT NULL,
	USERNAME   TEXT NOT NULL,
	NAMESPACE  TEXT NOT NULL,
	NAME       TEXT NOT NULL,
	VALUE      TEXT NOT NULL,
	POSITION   INTEGER NOT NULL,
	CREATED_AT TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (PROJECT, USERNAME, NAMESPACE, NAME)
)`
