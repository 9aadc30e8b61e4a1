// SPDX-License-Identifier: MPL-2.0

package run

import (
	"fmt"
	"os"

	"claude-docker/internal/agent"
	"claude-docker/internal/auth"
	"claude-docker/internal/config"
	"claude-docker/internal/container"
	"claude-docker/internal/image"
)

// DefaultAgentPrompt is sent when an agent does not configure its own.
const DefaultAgentPrompt = "/c3po auto"

// Options describes one container session.
type Options struct {
	// Prompt is passed to claude with -p. Empty in agent mode selects
	// DefaultAgentPrompt.
	Prompt string
	// WorkDir is the host directory mounted at /workspace.
	WorkDir string
	// ProjectName becomes CLAUDE_PROJECT_NAME inside the container.
	ProjectName string
	// AgentMode marks unattended agent runs (CLAUDE_AGENT_MODE=1).
	AgentMode bool
	// Model overrides the claude model.
	Model string
	// Env holds extra "KEY=VALUE" entries, applied in order.
	Env []string
	// Init commands run inside the container before the prompt.
	Init []string
	// PostRun commands run inside the container after the prompt.
	PostRun []string
	// Stream enables the formatted streaming pipeline.
	Stream bool
	// StreamRaw passes stream-json through without formatting.
	StreamRaw bool
	// Verbose surfaces events the renderer would otherwise drop.
	Verbose bool
}

// BuildRunOptions assembles the container run options for a session. The
// mount and environment layout is a contract with the image entrypoint,
// so entries keep a fixed order.
func BuildRunOptions(opts Options) (container.RunOptions, error) {
	var out container.RunOptions

	configDir, err := config.Dir()
	if err != nil {
		return out, err
	}
	settingsPath, err := config.SettingsFile()
	if err != nil {
		return out, err
	}
	userConfigPath, err := config.UserConfigFile()
	if err != nil {
		return out, err
	}
	credsPath, err := config.CredentialsFile()
	if err != nil {
		return out, err
	}

	volumes := []string{
		fmt.Sprintf("%s:/home/node/.claude", configDir),
		fmt.Sprintf("%s:/workspace", opts.WorkDir),
	}
	if _, err := os.Stat(credsPath); err == nil {
		volumes = append(volumes, fmt.Sprintf("%s:/home/node/.claude/.credentials.json:ro", credsPath))
	}
	volumes = append(volumes,
		fmt.Sprintf("%s:/home/node/claude-docker.yaml", settingsPath),
		fmt.Sprintf("%s:/home/node/.claude.json", userConfigPath),
	)

	env := []string{fmt.Sprintf("CLAUDE_PROJECT_NAME=%s", opts.ProjectName)}
	if opts.AgentMode {
		env = append(env, "CLAUDE_AGENT_MODE=1")
	}
	if token := os.Getenv(auth.TokenEnv); token != "" {
		env = append(env, fmt.Sprintf("%s=%s", auth.TokenEnv, token))
	} else if token, ok, err := auth.LoadToken(); err != nil {
		return out, err
	} else if ok && token != "" {
		env = append(env, fmt.Sprintf("%s=%s", auth.TokenEnv, token))
	}
	if debug := os.Getenv("C3PO_DEBUG"); debug != "" {
		env = append(env, fmt.Sprintf("C3PO_DEBUG=%s", debug))
	}
	env = append(env, opts.Env...)

	if len(opts.Init) > 0 {
		encoded, err := agent.EncodeCommands(opts.Init)
		if err != nil {
			return out, err
		}
		env = append(env, fmt.Sprintf("AGENT_INIT=%s", encoded))
	}
	if len(opts.PostRun) > 0 {
		encoded, err := agent.EncodeCommands(opts.PostRun)
		if err != nil {
			return out, err
		}
		env = append(env, fmt.Sprintf("AGENT_POST_RUN=%s", encoded))
	}

	prompt := opts.Prompt
	if opts.AgentMode && prompt == "" {
		prompt = DefaultAgentPrompt
	}
	var command []string
	if opts.Stream || opts.StreamRaw {
		command = []string{"--output-format", "stream-json", "--verbose", "-p", prompt}
	} else {
		command = []string{"-p", prompt}
	}
	if opts.Model != "" {
		command = append(command, "--model", opts.Model)
	}

	out = container.RunOptions{
		Image:   image.Name,
		Command: command,
		Env:     env,
		Volumes: volumes,
		Remove:  true,
		Name:    fmt.Sprintf("claude-code-%d", os.Getpid()),
	}
	return out, nil
}
