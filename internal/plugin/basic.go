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

package plugin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/asgardeo/raider/internal/system/log"
)

// Literal creates a plugin holding a fixed value.
func Literal(name, value string) *Plugin {
	p := New(name, OutputKindData, Strategy{Policy: PolicyLiteral})
	p.SetValue(value)
	return p
}

// Empty creates a placeholder plugin without a value. It is typically rebound by a fuzzer.
func Empty(name string) *Plugin {
	return New(name, OutputKindData, Strategy{Policy: PolicyLiteral})
}

// Variable creates a plugin reading its own name from the user context, such as "username".
func Variable(name string) *Plugin {
	return New(name, OutputKindData, Strategy{Policy: PolicyFromUserData})
}

// Prompt creates a plugin whose value is asked interactively, once per pass.
func Prompt(name string) *Plugin {
	return New(name, OutputKindData, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(rctx *ResolveContext, _ []string) (string, bool) {
			if rctx == nil || rctx.Prompter == nil {
				return "", false
			}
			value, err := rctx.Prompter.PromptValue(OutputKindData.String(), name)
			if err != nil {
				log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
					Warn("Prompt failed", log.String(log.LoggerKeyPluginName, name), log.Error(err))
				return "", false
			}
			return value, value != ""
		},
	})
}

// Command creates a plugin whose value is the trimmed standard output of a command. The
// command line is split with shell quoting rules but is not run through a shell.
func Command(name, commandLine string) *Plugin {
	return New(name, OutputKindData, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(rctx *ResolveContext, _ []string) (string, bool) {
			logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
				log.String(log.LoggerKeyPluginName, name))

			args, err := shlex.Split(commandLine)
			if err != nil || len(args) == 0 {
				logger.Warn("Invalid command line", log.String("command", commandLine), log.Error(err))
				return "", false
			}

			ctx := context.Background()
			if rctx != nil && rctx.Context != nil {
				ctx = rctx.Context
			}
			// #nosec G204 -- running operator supplied commands is the purpose of this plugin.
			output, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
			if err != nil {
				logger.Warn("Command failed", log.String("command", commandLine), log.Error(err))
				return "", false
			}
			value := strings.TrimSpace(string(output))
			return value, value != ""
		},
	})
}

// File creates a plugin whose value is the content of a file. The plugin is named after the path.
func File(path string) *Plugin {
	return New(path, OutputKindData, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(_ *ResolveContext, _ []string) (string, bool) {
			return readFile(path)
		},
	})
}

// FileReplace creates a plugin reading a file and replacing every occurrence of old with the
// value of another plugin.
func FileReplace(path, old string, replacement *Plugin) *Plugin {
	return New(path, OutputKindData, Strategy{
		Policy: PolicyFromOtherPlugins,
		Compute: func(_ *ResolveContext, inputs []string) (string, bool) {
			content, ok := readFile(path)
			if !ok {
				return "", false
			}
			return strings.ReplaceAll(content, old, inputs[0]), true
		},
	}, replacement)
}

func readFile(path string) (string, bool) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Warn("Failed to read file", log.String("path", path), log.Error(err))
		return "", false
	}
	return string(content), len(content) > 0
}
