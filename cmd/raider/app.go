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
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/asgardeo/raider/internal/flow/definition"
	"github.com/asgardeo/raider/internal/flow/engine"
	"github.com/asgardeo/raider/internal/flow/flowmgt"
	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/prompt"
	"github.com/asgardeo/raider/internal/session"
	"github.com/asgardeo/raider/internal/session/store"
	"github.com/asgardeo/raider/internal/system/config"
	"github.com/asgardeo/raider/internal/system/database/provider"
	"github.com/asgardeo/raider/internal/system/error/serviceerror"
	httpservice "github.com/asgardeo/raider/internal/system/http"
	"github.com/asgardeo/raider/internal/system/log"
)

// raiderApp carries the state shared by the subcommands of one invocation.
type raiderApp struct {
	opts       *globalOptions
	raiderHome string
	cfg        *config.Config
	projects   flowmgt.FlowMgtServiceInterface
	dbProvider *provider.DBProvider
	logger     *log.Logger
}

func (a *raiderApp) init(cmd *cobra.Command) error {
	log.SetOutput(cmd.ErrOrStderr())
	a.logger = log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RaiderCLI"))

	raiderHome, err := getRaiderHome(a.opts)
	if err != nil {
		return err
	}
	cfg, err := initRaiderConfigurations(a.opts, raiderHome)
	if err != nil {
		return err
	}
	if err := config.InitializeRaiderRuntime(raiderHome, cfg); err != nil {
		return errors.Wrap(err, "failed to initialize runtime")
	}
	runtime := config.GetRaiderRuntime()
	a.raiderHome = runtime.RaiderHome
	a.cfg = &runtime.Config

	projects, err := newProjectService(a.cfg, a.raiderHome)
	if err != nil {
		return err
	}
	a.projects = projects
	return nil
}

func (a *raiderApp) close() error {
	if a.dbProvider == nil {
		return nil
	}
	return a.dbProvider.Close()
}

// project returns the selected project. Without a selection a single loaded project is used.
func (a *raiderApp) project() (*definition.Project, error) {
	name := a.opts.project
	if name == "" {
		name = a.cfg.Project.Active
	}
	if name == "" {
		names := a.projects.ProjectNames()
		if len(names) != 1 {
			return nil, errors.Errorf("select a project with --project, available: [%s]",
				strings.Join(names, ", "))
		}
		name = names[0]
	}
	project, svcErr := a.projects.GetProject(name)
	if svcErr != nil {
		return nil, toError(svcErr)
	}
	return project, nil
}

// newEngine creates the engine of a run over the project graph, seeded with the selected
// user's session and, with --persist, the stored session of that user.
func (a *raiderApp) newEngine(ctx context.Context, cmd *cobra.Command,
	project *definition.Project) (*engine.FlowEngine, error) {
	username := a.opts.user
	if username == "" {
		username = a.cfg.Project.ActiveUser
	}
	sess, err := project.NewSession(username)
	if err != nil {
		return nil, err
	}
	if a.opts.persist {
		if err := a.restoreSession(ctx, project, sess); err != nil {
			return nil, err
		}
	}

	client, err := httpservice.NewTransportClient(a.cfg.HTTP)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	return engine.NewFlowEngine(project.Graph, sess, client, engine.Options{
		Prompter:  prompt.NewDefaultPrompter(),
		UserAgent: a.cfg.HTTP.UserAgent,
		Output:    out,
		OutputDir: resolvePath(a.raiderHome, a.cfg.Output.Directory),
		OnTransition: func(from, to string) {
			a.logger.Debug("Transition", log.String("from", from), log.String("to", to))
		},
	}), nil
}

func (a *raiderApp) sessionStore() store.SessionStoreInterface {
	if a.dbProvider == nil {
		a.dbProvider = provider.NewDBProvider(config.GetRaiderRuntime())
	}
	return store.NewSessionStore(a.dbProvider)
}

// restoreSession merges the stored entries of the user into sess and seeds the response bound
// plugins of the project with the stored values.
func (a *raiderApp) restoreSession(ctx context.Context, project *definition.Project, sess *session.Session) error {
	if sess.Username == "" {
		a.logger.Warn("No user selected, the stored session is not loaded")
		return nil
	}
	stored, err := a.sessionStore().Load(ctx, project.Name, sess.Username)
	if err != nil {
		return errors.Wrap(err, "failed to load the stored session")
	}
	if stored == nil {
		return nil
	}
	for _, namespace := range []session.Namespace{session.NamespaceCookie, session.NamespaceHeader,
		session.NamespaceData} {
		for _, entry := range stored.Entries(namespace) {
			sess.Set(namespace, entry.Name, entry.Value)
		}
	}
	for _, name := range project.PluginNames() {
		p, _ := project.Plugin(name)
		if p.Policy() != plugin.PolicyFromResponse {
			continue
		}
		if value, ok := sess.Get(p.Name()); ok {
			p.SetValue(value)
		}
	}
	a.logger.Info("Loaded the stored session", log.String("project", project.Name))
	return nil
}

// persistSession stores the session of the run when --persist is set.
func (a *raiderApp) persistSession(ctx context.Context, projectName string, sess *session.Session) error {
	if !a.opts.persist {
		return nil
	}
	if sess.Username == "" {
		a.logger.Warn("No user selected, the session is not stored")
		return nil
	}
	sessionID, err := a.sessionStore().Save(ctx, projectName, sess)
	if err != nil {
		return errors.Wrap(err, "failed to store the session")
	}
	a.logger.Info("Stored the session", log.String("project", projectName), log.String("sessionId", sessionID))
	return nil
}

// toError converts a service error to an error for cobra.
func toError(svcErr *serviceerror.ServiceError) error {
	if svcErr == nil {
		return nil
	}
	return errors.New(svcErr.String())
}
