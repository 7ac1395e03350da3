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

import "sync"

// RaiderRuntime holds the runtime configuration for a raider process.
type RaiderRuntime struct {
	RaiderHome string `yaml:"raider_home"`
	Config     Config `yaml:"config"`
}

var (
	runtimeConfig *RaiderRuntime
	once          sync.Once
)

// InitializeRaiderRuntime initializes the RaiderRuntime configuration.
func InitializeRaiderRuntime(raiderHome string, config *Config) error {
	once.Do(func() {
		runtimeConfig = &RaiderRuntime{
			RaiderHome: raiderHome,
			Config:     *config,
		}
	})

	return nil
}

// GetRaiderRuntime returns the RaiderRuntime configuration.
func GetRaiderRuntime() *RaiderRuntime {
	if runtimeConfig == nil {
		panic("RaiderRuntime is not initialized")
	}
	return runtimeConfig
}

// ResetRaiderRuntime resets the RaiderRuntime.
// This should only be used in tests to reset the singleton state.
func ResetRaiderRuntime() {
	runtimeConfig = nil
	once = sync.Once{}
}
