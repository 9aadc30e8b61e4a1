// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"claude-docker/internal/agent"
	"claude-docker/internal/config"
	"claude-docker/internal/image"
	"claude-docker/internal/run"
)

var (
	agentCmd = &cobra.Command{
		Use:   "agent",
		Short: "Manage and run configured agents",
		Long: `Agents are named presets in ~/.claude-docker/agents.yaml: a workspace to
mount plus an optional model, environment, and init commands. An agent run
is non-interactive and uses the agent prompt.`,
		Args: cobra.ArbitraryArgs,
		// Compatibility spelling: `claude-docker agent <name>` runs the agent.
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAgent(cmd, args[0])
		},
	}

	agentListCmd = &cobra.Command{
		Use:   "list",
		Short: "List configured agents",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAgents(cmd)
		},
	}

	agentRunCmd = &cobra.Command{
		Use:   "run <name>",
		Short: "Run a named agent",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, args[0])
		},
	}
)

func init() {
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentRunCmd)
}

func listAgents(cmd *cobra.Command) error {
	agents, err := agent.Load()
	if err != nil {
		return displayError(err)
	}
	if agents.Len() == 0 {
		path, _ := config.AgentsFile()
		fmt.Fprintln(cmd.OutOrStdout(), "No agents configured.")
		fmt.Fprintf(cmd.OutOrStdout(), "Define agents in %s\n", CmdStyle.Render(path))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available agents:")
	for _, s := range agents.Summaries() {
		parts := []string{fmt.Sprintf("  %-15s %s", s.Name, s.Workspace)}
		if s.Model != "" {
			parts = append(parts, fmt.Sprintf("(model: %s)", s.Model))
		}
		var extras []string
		if s.EnvCount > 0 {
			extras = append(extras, fmt.Sprintf("env: %d", s.EnvCount))
		}
		if s.InitCount > 0 {
			extras = append(extras, fmt.Sprintf("init: %d", s.InitCount))
		}
		if len(extras) > 0 {
			parts = append(parts, fmt.Sprintf("[%s]", strings.Join(extras, " ")))
		}
		if len(s.Triggers) > 0 {
			parts = append(parts, SubtitleStyle.Render(fmt.Sprintf("triggers: %s", strings.Join(s.Triggers, ", "))))
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
	}
	return nil
}

func runAgent(cmd *cobra.Command, name string) error {
	agents, err := agent.Load()
	if err != nil {
		return displayError(err)
	}
	agentCfg, err := agents.Resolve(name)
	if err != nil {
		return displayError(err)
	}

	if info, err := os.Stat(agentCfg.Workspace); err != nil || !info.IsDir() {
		return displayError(fmt.Errorf("agent %q workspace %s is not a directory", name, agentCfg.Workspace))
	}

	// Fail fast on host for commands the entrypoint could not parse.
	if err := agent.CheckCommands(agentCfg.Init); err != nil {
		return displayError(fmt.Errorf("agent %q init: %w", name, err))
	}
	if err := agent.CheckCommands(agentCfg.PostRun); err != nil {
		return displayError(fmt.Errorf("agent %q post_run: %w", name, err))
	}

	cfg, err := loadConfigWithFlags()
	if err != nil {
		return displayError(err)
	}
	if err := run.Prepare(cfg); err != nil {
		return displayError(err)
	}

	eng, err := detectEngine(cfg)
	if err != nil {
		return displayError(engineError(err))
	}

	ctx := cmd.Context()
	if err := image.Ensure(ctx, eng, cfg, forceBuild, os.Stderr); err != nil {
		return displayError(err)
	}

	stream, streamRaw := streamSettings()
	runner := run.NewRunner(eng, cfg)
	exitCode, err := runner.Execute(ctx, run.Options{
		Prompt:      agentCfg.Prompt,
		WorkDir:     agentCfg.Workspace,
		ProjectName: name,
		AgentMode:   true,
		Model:       agentCfg.Model,
		Env:         sortedEnv(agentCfg.Env),
		Init:        agentCfg.Init,
		PostRun:     agentCfg.PostRun,
		Stream:      stream,
		StreamRaw:   streamRaw,
		Verbose:     verbose,
	})
	if err != nil {
		return displayError(err)
	}
	if exitCode != 0 {
		return &ExitError{Code: exitCode}
	}
	return nil
}

// sortedEnv renders an env map as ordered KEY=VALUE pairs so the container
// arguments stay deterministic.
func sortedEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}
