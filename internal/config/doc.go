// SPDX-License-Identifier: MPL-2.0

// Package config owns the ~/.claude-docker directory: the settings file
// (claude-docker.yaml), the agents file, the stored OAuth token, and the
// container-side user config. Settings are loaded through viper with
// programmatic defaults, so a missing file is never an error.
package config
