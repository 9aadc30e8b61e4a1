// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claude-docker/internal/auth"
	"claude-docker/internal/config"
	"claude-docker/internal/container"
	"claude-docker/internal/image"
	"claude-docker/internal/run"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive shell in the container",
	Long: `Start bash inside the claude-code container with the current directory
mounted at /workspace. Useful for inspecting the container environment.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		opts, err := shellRunOptions()
		if err != nil {
			return displayError(err)
		}

		res, err := eng.Run(ctx, opts)
		if err != nil {
			return displayError(err)
		}
		if res.Error != nil {
			return displayError(res.Error)
		}
		if res.ExitCode != 0 {
			return &ExitError{Code: res.ExitCode}
		}
		return nil
	},
}

// shellRunOptions builds an interactive bash session with the same mounts
// a claude run gets, but with the current directory as the workspace.
func shellRunOptions() (container.RunOptions, error) {
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
	cwd, err := os.Getwd()
	if err != nil {
		return out, err
	}

	volumes := []string{
		fmt.Sprintf("%s:/home/node/.claude", configDir),
		fmt.Sprintf("%s:/workspace", cwd),
		fmt.Sprintf("%s:/home/node/claude-docker.yaml", settingsPath),
		fmt.Sprintf("%s:/home/node/.claude.json", userConfigPath),
	}
	if _, err := os.Stat(credsPath); err == nil {
		volumes = append(volumes, fmt.Sprintf("%s:/home/node/.claude/.credentials.json:ro", credsPath))
	}

	var env []string
	if token := os.Getenv(auth.TokenEnv); token != "" {
		env = append(env, fmt.Sprintf("%s=%s", auth.TokenEnv, token))
	} else if token, ok, err := auth.LoadToken(); err != nil {
		return out, err
	} else if ok && token != "" {
		env = append(env, fmt.Sprintf("%s=%s", auth.TokenEnv, token))
	}

	return container.RunOptions{
		Image:       image.Name,
		Entrypoint:  "bash",
		Env:         env,
		Volumes:     volumes,
		Remove:      true,
		Interactive: true,
		TTY:         true,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}, nil
}
