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

package operation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/asgardeo/raider/internal/plugin"
	httpservice "github.com/asgardeo/raider/internal/system/http"
)

// Save creates an operation overwriting file with the value of p followed by a newline.
func Save(file string, p *plugin.Plugin) *Operation {
	return saveOperation(file, p, false)
}

// SaveAppend creates an operation appending the value of p and a newline to file.
func SaveAppend(file string, p *plugin.Plugin) *Operation {
	return saveOperation(file, p, true)
}

// SaveBody creates an operation writing the whole response body to file.
func SaveBody(file string, appendMode bool) *Operation {
	return &Operation{
		kind:          KindSaveToFile,
		needsResponse: true,
		description:   file,
		effect: func(env *Env, resp *httpservice.Response) error {
			return writeLine(env, file, resp.Body, appendMode)
		},
	}
}

func saveOperation(file string, p *plugin.Plugin, appendMode bool) *Operation {
	return &Operation{
		kind:          KindSaveToFile,
		needsUserData: true,
		description:   file + "," + p.Name(),
		plugins:       []*plugin.Plugin{p},
		effect: func(env *Env, _ *httpservice.Response) error {
			value, _ := p.Value()
			return writeLine(env, file, []byte(value), appendMode)
		},
	}
}

func writeLine(env *Env, file string, content []byte, appendMode bool) error {
	path := file
	if !filepath.IsAbs(path) && env != nil && env.OutputDir != "" {
		path = filepath.Join(env.OutputDir, path)
	}
	path = filepath.Clean(path)

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
