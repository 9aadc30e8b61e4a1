// SPDX-License-Identifier: MPL-2.0

package config

// Overrides for tests. os.UserHomeDir() doesn't reliably respect the HOME
// environment variable on all platforms (e.g., macOS in CI), so tests point
// these at t.TempDir() instead of manipulating the environment.
var (
	configDirOverride string
	homeDirOverride   string
)

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	homeDirOverride = ""
}

// SetConfigDirOverride sets a custom ~/.claude-docker path.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetHomeDirOverride sets a custom home directory, affecting the default
// config dir, the credentials path, and the session log directory.
func SetHomeDirOverride(dir string) {
	homeDirOverride = dir
}
