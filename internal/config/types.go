// SPDX-License-Identifier: MPL-2.0

package config

type (
	// Config is the claude-docker.yaml settings file. The same file is
	// mounted into the container, where the entrypoint reads the
	// streamLogging section, so key names are fixed.
	Config struct {
		StreamLogging StreamLoggingConfig `mapstructure:"streamLogging"`
		Build         BuildConfig         `mapstructure:"build"`
		// Runtime pins the container runtime ("docker" or "finch").
		// Empty means auto-detection, docker first.
		Runtime string `mapstructure:"runtime"`
	}

	// StreamLoggingConfig controls session logging of stream-json output.
	StreamLoggingConfig struct {
		// Enabled turns session logging on
		Enabled bool `mapstructure:"enabled"`
		// Directory is where session log files are written
		Directory string `mapstructure:"directory"`
		// RetentionDays is how long clean-logs keeps log files
		RetentionDays int `mapstructure:"retentionDays"`
		// MaxFileSizeMB caps a single session log file; writing stops
		// (the run is unaffected) once the cap is reached
		MaxFileSizeMB int `mapstructure:"maxFileSizeMB"`
	}

	// BuildConfig controls image build input resolution.
	BuildConfig struct {
		// Context overrides the image build context directory. Empty
		// means: CLAUDE_DOCKER_BUILD_CONTEXT env var, then the
		// directory of the claude-docker executable.
		Context string `mapstructure:"context"`
	}
)

const (
	// DefaultRetentionDays is the session log retention window.
	DefaultRetentionDays = 30
	// DefaultMaxFileSizeMB caps a single session log file.
	DefaultMaxFileSizeMB = 10
)

// DefaultConfig returns the default configuration. The session log
// directory is resolved lazily because it depends on the home directory.
func DefaultConfig() *Config {
	return &Config{
		StreamLogging: StreamLoggingConfig{
			Enabled:       true,
			Directory:     "", // resolved by Load/SessionLogsDir
			RetentionDays: DefaultRetentionDays,
			MaxFileSizeMB: DefaultMaxFileSizeMB,
		},
	}
}
