// SPDX-License-Identifier: MPL-2.0

package image

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"claude-docker/internal/config"
	"claude-docker/internal/container"
	"claude-docker/internal/issue"
)

const (
	// Name is the tag of the container image.
	Name = "claude-code"
	// HashLabel is the image label carrying the build-input hash.
	HashLabel = "build.hash"
	// ForceBuildEnv forces a rebuild regardless of the stored hash.
	ForceBuildEnv = "CLAUDE_DOCKER_FORCE_BUILD"
	// BuildContextEnv overrides build context resolution.
	BuildContextEnv = "CLAUDE_DOCKER_BUILD_CONTEXT"
)

// buildInputs are the files whose content determines the image hash, in
// hashing order.
var buildInputs = []string{"Dockerfile", "entrypoint.sh"}

// ResolveBuildContext picks the directory holding the Dockerfile and
// entrypoint.sh: the environment override, then the build.context config
// key, then the directory of the running executable.
func ResolveBuildContext(cfg *config.Config) (string, error) {
	if dir := os.Getenv(BuildContextEnv); dir != "" {
		return dir, nil
	}
	if cfg != nil && cfg.Build.Context != "" {
		return cfg.Build.Context, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Hash computes the hex SHA-256 of the concatenated build inputs in
// contextDir. Both files must exist; the hash is the rebuild contract with
// images built by earlier versions, so the input set and order are fixed.
func Hash(contextDir string) (string, error) {
	h := sha256.New()
	for _, name := range buildInputs {
		path := filepath.Join(contextDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", issue.NewErrorContext().
				WithOperation("hash build inputs").
				WithResource(path).
				WithSuggestion("Verify the build context directory contains Dockerfile and entrypoint.sh").
				WithSuggestion(fmt.Sprintf("Set %s to point at the build context", BuildContextEnv)).
				Wrap(err).
				BuildError()
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NeedsRebuild reports whether the image must be (re)built: forced via
// environment, image missing, or stored hash label differing from want.
func NeedsRebuild(ctx context.Context, eng container.Engine, want string) (bool, error) {
	if os.Getenv(ForceBuildEnv) == "1" {
		return true, nil
	}
	exists, err := eng.ImageExists(ctx, Name)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	stored, err := eng.ImageLabel(ctx, Name, HashLabel)
	if err != nil {
		return false, err
	}
	return stored != want, nil
}

// Ensure builds the image when needed. force skips the rebuild check.
// Build output goes to stderr so it never mixes with streamed run output.
func Ensure(ctx context.Context, eng container.Engine, cfg *config.Config, force bool, stderr io.Writer) error {
	contextDir, err := ResolveBuildContext(cfg)
	if err != nil {
		return err
	}
	hash, err := Hash(contextDir)
	if err != nil {
		return err
	}

	if !force {
		rebuild, err := NeedsRebuild(ctx, eng, hash)
		if err != nil {
			return err
		}
		if !rebuild {
			return nil
		}
	}

	fmt.Fprintf(stderr, "Building %s image...\n", Name)
	return eng.Build(ctx, container.BuildOptions{
		ContextDir: contextDir,
		Tag:        Name,
		Labels:     []string{fmt.Sprintf("%s=%s", HashLabel, hash)},
		Stdout:     stderr,
		Stderr:     stderr,
	})
}
