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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/asgardeo/raider/internal/flow/definition"
	"github.com/asgardeo/raider/internal/fuzz"
	"github.com/asgardeo/raider/internal/plugin"
	"github.com/asgardeo/raider/internal/request"
	"github.com/asgardeo/raider/internal/system/log"
)

func newRunCmd(app *raiderApp) *cobra.Command {
	return &cobra.Command{
		Use:   "run <flow-or-graph>[,<flow-or-graph>...]",
		Short: "Run a comma separated chain of flows and flow graphs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := app.project()
			if err != nil {
				return err
			}
			fe, err := app.newEngine(ctx, cmd, project)
			if err != nil {
				return err
			}

			result, svcErr := fe.RunChain(ctx, args[0])
			if err := app.persistSession(ctx, project.Name, fe.Session()); err != nil {
				return err
			}
			if svcErr != nil {
				return toError(svcErr)
			}

			rows := make([][]string, 0, len(result.Steps))
			for _, step := range result.Steps {
				rows = append(rows, []string{step.Name, string(step.Kind), step.Signal})
			}
			renderTable(cmd.OutOrStdout(), []string{"Name", "Kind", "Result"}, rows)
			return nil
		},
	}
}

func newGraphCmd(app *raiderApp) *cobra.Command {
	var withTest bool
	cmd := &cobra.Command{
		Use:   "graph <name>",
		Short: "Run a flow graph from its start flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := app.project()
			if err != nil {
				return err
			}
			fe, err := app.newEngine(ctx, cmd, project)
			if err != nil {
				return err
			}

			result, svcErr := fe.RunGraph(ctx, args[0], withTest)
			if err := app.persistSession(ctx, project.Name, fe.Session()); err != nil {
				return err
			}
			if svcErr != nil {
				return toError(svcErr)
			}

			renderTable(cmd.OutOrStdout(), []string{"Graph", "Status", "Flows", "Test"}, [][]string{{
				result.Graph, string(result.Status), strings.Join(result.Visited, " > "), string(result.Test),
			}})
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withTest, "test", "t", false, "Run the graph's test flow after it succeeds")
	return cmd
}

func newFuzzCmd(app *raiderApp) *cobra.Command {
	var (
		wordlist  string
		prepend   bool
		appendTo  bool
		processor string
		graphName string
	)
	cmd := &cobra.Command{
		Use:   "fuzz <flow> <input>",
		Short: "Replay a flow once per word with one of its inputs replaced",
		Long: `Replay a flow once per word of a wordlist with the named request input bound to
the word. With --graph the flow graph runs first, so that the fuzzed flow starts
from an authenticated session.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			words, err := fuzz.LoadWordlist(wordlist)
			if err != nil {
				return errors.Wrap(err, "failed to read the wordlist")
			}
			proc, err := fuzz.ParseProcessor(processor)
			if err != nil {
				return err
			}
			mode := fuzz.ModeReplace
			if prepend {
				mode = fuzz.ModePrepend
			} else if appendTo {
				mode = fuzz.ModeAppend
			}

			project, err := app.project()
			if err != nil {
				return err
			}
			fe, err := app.newEngine(ctx, cmd, project)
			if err != nil {
				return err
			}
			if graphName != "" {
				if _, svcErr := fe.RunGraph(ctx, graphName, false); svcErr != nil {
					return toError(svcErr)
				}
			}

			fuzzer := fuzz.NewFuzzer(fe, project.Graph, args[0], args[1], mode, proc)
			fuzzer.OnResult = func(r fuzz.Result) {
				app.logger.Debug("Fuzzing result", log.String("word", r.Word), log.Int("status", r.Status))
			}
			results, svcErr := fuzzer.Run(ctx, words)

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status, failure := "", ""
				if r.Status != 0 {
					status = strconv.Itoa(r.Status)
				}
				if r.Error != nil {
					failure = r.Error.String()
				}
				rows = append(rows, []string{r.Word, r.Payload, status, r.Signal, failure})
			}
			renderTable(cmd.OutOrStdout(), []string{"Word", "Payload", "Status", "Result", "Error"}, rows)
			return toError(svcErr)
		},
	}
	cmd.Flags().StringVarP(&wordlist, "wordlist", "w", "", "File with one word per line")
	cmd.Flags().BoolVar(&prepend, "prepend", false, "Prepend each word to the input's current value")
	cmd.Flags().BoolVar(&appendTo, "append", false, "Append each word to the input's current value")
	cmd.Flags().StringVar(&processor, "processor", "", "Encode each payload: urlencode, urldecode, b64encode or b64decode")
	cmd.Flags().StringVarP(&graphName, "graph", "g", "", "Flow graph to run before fuzzing")
	_ = cmd.MarkFlagRequired("wordlist")
	cmd.MarkFlagsMutuallyExclusive("prepend", "append")
	return cmd
}

func newShowCmd(app *raiderApp) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the loaded projects, or the flows and graphs of the selected project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if app.opts.project == "" && app.cfg.Project.Active == "" && len(app.projects.ProjectNames()) != 1 {
				rows := [][]string{}
				for _, name := range app.projects.ProjectNames() {
					rows = append(rows, []string{name})
				}
				renderTable(out, []string{"Project"}, rows)
				return nil
			}

			project, err := app.project()
			if err != nil {
				return err
			}
			showProject(out, project)
			return nil
		},
	}
}

func newSessionCmd(app *raiderApp) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored sessions",
	}
	sessionCmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete the stored session of the selected user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := app.project()
			if err != nil {
				return err
			}
			username := app.opts.user
			if username == "" {
				username = app.cfg.Project.ActiveUser
			}
			if username == "" {
				return errors.New("select a user with --user")
			}
			if err := app.sessionStore().Delete(cmd.Context(), project.Name, username); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted the stored session of %s in %s\n", username, project.Name)
			return err
		},
	})
	return sessionCmd
}

func showProject(out io.Writer, project *definition.Project) {
	_, _ = fmt.Fprintf(out, "Project %s\n", project.Name)

	flowRows := [][]string{}
	for _, name := range project.Graph.FlowNames() {
		flow, _ := project.Graph.GetFlow(name)
		flowRows = append(flowRows, []string{
			name,
			flow.Request().Method(),
			describeURL(flow.Request().URL()),
			pluginNames(flow.Outputs()),
			strconv.Itoa(len(flow.Operations())),
		})
	}
	renderTable(out, []string{"Flow", "Method", "URL", "Outputs", "Operations"}, flowRows)

	graphRows := [][]string{}
	for _, name := range project.Graph.GraphNames() {
		graph, _ := project.Graph.GetGraph(name)
		graphRows = append(graphRows, []string{name, graph.Start, graph.Test})
	}
	renderTable(out, []string{"Graph", "Start", "Test"}, graphRows)

	userRows := [][]string{}
	for _, user := range project.Users {
		userRows = append(userRows, []string{user.Username, strconv.Itoa(len(user.Data))})
	}
	renderTable(out, []string{"User", "Data"}, userRows)
}

func describeURL(url request.Value) string {
	if p := url.Plugin(); p != nil {
		return "$" + p.Name()
	}
	return url.Literal()
}

func pluginNames(plugins []*plugin.Plugin) string {
	names := make([]string, 0, len(plugins))
	for _, p := range plugins {
		names = append(names, p.Name())
	}
	return strings.Join(names, ", ")
}

func renderTable(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
