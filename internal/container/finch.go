// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FinchEngine implements the Engine interface using the finch CLI.
// Finch is CLI-compatible with docker for every subcommand this package
// issues (build, run, stop, image inspect, rmi), so it only needs its own
// binary resolution and version probe.
type FinchEngine struct {
	*BaseCLIEngine
}

// NewFinchEngine creates a new finch engine.
func NewFinchEngine(opts ...BaseCLIEngineOption) *FinchEngine {
	path, _ := exec.LookPath("finch")
	return &FinchEngine{
		BaseCLIEngine: NewBaseCLIEngine(string(EngineTypeFinch), path, opts...),
	}
}

// Version returns the finch client version.
func (e *FinchEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Client.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get finch version: %w", err)
	}
	return strings.TrimSpace(out), nil
}
