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

// Package config provides structures and functions for loading and managing raider configurations.
package config

import (
	"os"
	"path/filepath"

	"github.com/asgardeo/raider/internal/system/constants"
	"github.com/asgardeo/raider/internal/system/log"

	yaml "gopkg.in/yaml.v3"
)

// HTTPConfig holds the outbound HTTP transport configuration.
type HTTPConfig struct {
	Proxy     string `yaml:"proxy"`
	UseProxy  bool   `yaml:"use_proxy"`
	Verify    bool   `yaml:"verify"`
	UserAgent string `yaml:"user_agent"`
	Timeout   int    `yaml:"timeout"`
}

// ProjectConfig holds the project selection details.
type ProjectConfig struct {
	Directory  string `yaml:"directory"`
	Active     string `yaml:"active"`
	ActiveUser string `yaml:"active_user"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type            string `yaml:"type"`
	Hostname        string `yaml:"hostname"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"sslmode"`
	Path            string `yaml:"path"`
	Options         string `yaml:"options"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

// DatabaseConfig holds the different database configuration details.
type DatabaseConfig struct {
	Session DataSource `yaml:"session"`
}

// OutputConfig holds the locations used by file writing operations.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// Config holds the complete configuration details of raider.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Project  ProjectConfig  `yaml:"project"`
	Database DatabaseConfig `yaml:"database"`
	Output   OutputConfig   `yaml:"output"`
}

// DefaultConfig returns the configuration used when no file overrides a value.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Proxy:     "http://localhost:8080",
			UseProxy:  false,
			Verify:    false,
			UserAgent: constants.DefaultUserAgent,
			Timeout:   constants.DefaultHTTPTimeoutSeconds,
		},
		Project: ProjectConfig{
			Directory: "projects",
		},
		Database: DatabaseConfig{
			Session: DataSource{
				Type:         "sqlite",
				Path:         "sessions.db",
				Options:      "_pragma=busy_timeout(5000)",
				MaxOpenConns: 1,
				MaxIdleConns: 1,
			},
		},
	}
}

// LoadConfig loads the configurations from the specified YAML file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = constants.DefaultHTTPTimeoutSeconds
	}
	return cfg, nil
}
