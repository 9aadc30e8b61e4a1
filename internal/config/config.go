// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"claude-docker/internal/issue"
)

const (
	// AppDirName is the per-user state directory under $HOME.
	AppDirName = ".claude-docker"
	// SettingsFileName is the settings file inside the config dir.
	SettingsFileName = "claude-docker.yaml"
	// AgentsFileName is the agents file inside the config dir.
	AgentsFileName = "agents.yaml"
	// TokenFileName stores the long-lived OAuth token (0600).
	TokenFileName = ".oauth-token"
	// UserConfigFileName is the claude user config mounted into the
	// container as /home/node/.claude.json.
	UserConfigFileName = ".claude.json"
	// SessionLogsDirName is the default session log directory name.
	SessionLogsDirName = "session-logs"
)

// HomeDir returns the user home directory, honoring the test override.
func HomeDir() (string, error) {
	if homeDirOverride != "" {
		return homeDirOverride, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return home, nil
}

// Dir returns the claude-docker config directory (~/.claude-docker).
func Dir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, AppDirName), nil
}

// SettingsFile returns the path of claude-docker.yaml.
func SettingsFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// AgentsFile returns the path of agents.yaml.
func AgentsFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AgentsFileName), nil
}

// TokenFile returns the path of the stored OAuth token.
func TokenFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TokenFileName), nil
}

// UserConfigFile returns the path of the container-side user config.
func UserConfigFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UserConfigFileName), nil
}

// CredentialsFile returns the path of the host claude credentials
// (~/.claude/.credentials.json), mounted read-only when present.
func CredentialsFile() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", ".credentials.json"), nil
}

// SessionLogsDir returns the configured session log directory, or the
// default ~/.claude-docker/session-logs.
func SessionLogsDir(cfg *Config) (string, error) {
	if cfg != nil && cfg.StreamLogging.Directory != "" {
		return cfg.StreamLogging.Directory, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SessionLogsDirName), nil
}

// EnsureDir creates the config directory if it doesn't exist.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// EnsureUserConfig seeds the container-side user config with an empty JSON
// document so the mount target exists before the first run.
func EnsureUserConfig() error {
	path, err := UserConfigFile()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte("{}\n"), 0o644)
}

// Load reads claude-docker.yaml through viper. A missing file yields the
// defaults; a malformed file is an actionable error.
func Load() (*Config, error) {
	path, err := SettingsFile()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := DefaultConfig()
	v.SetDefault("streamLogging.enabled", defaults.StreamLogging.Enabled)
	v.SetDefault("streamLogging.directory", defaults.StreamLogging.Directory)
	v.SetDefault("streamLogging.retentionDays", defaults.StreamLogging.RetentionDays)
	v.SetDefault("streamLogging.maxFileSizeMB", defaults.StreamLogging.MaxFileSizeMB)
	v.SetDefault("build.context", "")
	v.SetDefault("runtime", "")

	if err := v.ReadInConfig(); err != nil {
		// A missing file means defaults; anything else is a real problem.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(path).
				WithSuggestion("Check the file for YAML syntax errors").
				WithSuggestion("Delete it to regenerate defaults on the next run").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return &cfg, nil
}

// EnsureSettingsFile writes the default claude-docker.yaml when the file
// does not exist yet. The file carries the session logging defaults and is
// chmod 0600 because it is mounted into the container alongside credentials.
func EnsureSettingsFile() error {
	path, err := SettingsFile()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := DefaultConfig()
	logDir, err := SessionLogsDir(cfg)
	if err != nil {
		return err
	}
	cfg.StreamLogging.Directory = logDir

	if err := os.WriteFile(path, []byte(GenerateYAML(cfg)), 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// GenerateYAML renders the settings file content. Written by hand rather
// than marshaled so the emitted file keeps a stable, commented layout.
func GenerateYAML(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("streamLogging:\n")
	sb.WriteString(fmt.Sprintf("  enabled: %v\n", cfg.StreamLogging.Enabled))
	sb.WriteString(fmt.Sprintf("  directory: %s\n", cfg.StreamLogging.Directory))
	sb.WriteString(fmt.Sprintf("  retentionDays: %d\n", cfg.StreamLogging.RetentionDays))
	sb.WriteString(fmt.Sprintf("  maxFileSizeMB: %d\n", cfg.StreamLogging.MaxFileSizeMB))

	if cfg.Build.Context != "" {
		sb.WriteString("build:\n")
		sb.WriteString(fmt.Sprintf("  context: %s\n", cfg.Build.Context))
	}

	return sb.String()
}
