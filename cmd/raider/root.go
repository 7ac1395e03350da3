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

package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/asgardeo/raider/internal/flow/flowmgt"
	"github.com/asgardeo/raider/internal/system/config"
	"github.com/asgardeo/raider/internal/system/constants"
	"github.com/asgardeo/raider/internal/system/log"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	home    string
	config  string
	project string
	user    string
	persist bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	app := &raiderApp{opts: opts}

	rootCmd := &cobra.Command{
		Use:   "raider",
		Short: "Raider - authentication flow runner",
		Long: `Raider replays authentication processes described as flows and flow graphs.

A project file declares the flows, the plugins extracting values from responses
and the users to authenticate. Runs can persist the resulting session so that a
later run continues where the previous one stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.home, "home", "", "Raider home directory (default $RAIDER_HOME or the working directory)")
	flags.StringVarP(&opts.config, "config", "c", "", "Path to the configuration file (default <home>/raider.yaml)")
	flags.StringVarP(&opts.project, "project", "p", "", "Project to use (default project.active)")
	flags.StringVarP(&opts.user, "user", "u", "", "User to authenticate as (default project.active_user)")
	flags.BoolVar(&opts.persist, "persist", false, "Load the stored session before the run and store it afterwards")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newGraphCmd(app))
	rootCmd.AddCommand(newFuzzCmd(app))
	rootCmd.AddCommand(newShowCmd(app))
	rootCmd.AddCommand(newSessionCmd(app))
	return rootCmd
}

// getRaiderHome returns the home directory from the flag, the environment or the working
// directory, in that order.
func getRaiderHome(opts *globalOptions) (string, error) {
	if opts.home != "" {
		return opts.home, nil
	}
	if home := os.Getenv(constants.RaiderHomeEnvironmentVariable); home != "" {
		return home, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current working directory")
	}
	return dir, nil
}

// initRaiderConfigurations loads the configuration file. A missing default file falls back
// to the built-in defaults; a missing explicit file is an error.
func initRaiderConfigurations(opts *globalOptions, raiderHome string) (*config.Config, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RaiderCLI"))

	configPath := opts.config
	if configPath == "" {
		configPath = filepath.Join(raiderHome, constants.DefaultConfigFileName)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			logger.Debug("Configuration file not found, using defaults", log.String("path", configPath))
			return config.DefaultConfig(), nil
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load configuration %s", configPath)
	}
	return cfg, nil
}

// resolvePath joins relative paths to the home directory.
func resolvePath(raiderHome, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(raiderHome, path)
}

func newProjectService(cfg *config.Config, raiderHome string) (*flowmgt.FlowMgtService, error) {
	service := flowmgt.NewFlowMgtService()
	if err := service.Init(resolvePath(raiderHome, cfg.Project.Directory)); err != nil {
		return nil, err
	}
	return service, nil
}
