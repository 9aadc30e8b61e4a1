// SPDX-License-Identifier: MPL-2.0

package run

import (
	"fmt"
	"os"
	"path/filepath"

	"claude-docker/internal/config"
	"claude-docker/internal/image"
)

// containerInstructionsFile is copied from the build context into the
// config dir as CLAUDE.md, where the config-dir mount puts it at
// /home/node/.claude/CLAUDE.md for the in-container claude to read.
const containerInstructionsFile = "container-CLAUDE.md"

// Prepare sets up ~/.claude-docker before a run: the directory itself,
// the settings file, the seeded user config, and the container-side
// CLAUDE.md when the build context provides one.
func Prepare(cfg *config.Config) error {
	if err := config.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.EnsureSettingsFile(); err != nil {
		return err
	}
	if err := config.EnsureUserConfig(); err != nil {
		return err
	}
	return syncContainerInstructions(cfg)
}

func syncContainerInstructions(cfg *config.Config) error {
	contextDir, err := image.ResolveBuildContext(cfg)
	if err != nil {
		return err
	}
	src := filepath.Join(contextDir, containerInstructionsFile)
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "CLAUDE.md"), data, 0o644)
}
