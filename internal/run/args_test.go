// SPDX-License-Identifier: MPL-2.0

package run

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"claude-docker/internal/auth"
	"claude-docker/internal/config"
)

func setupTestDirs(t *testing.T) (home, cfgDir string) {
	t.Helper()
	home = t.TempDir()
	cfgDir = filepath.Join(home, config.AppDirName)
	config.SetHomeDirOverride(home)
	config.SetConfigDirOverride(cfgDir)
	t.Cleanup(config.Reset)
	t.Setenv(auth.TokenEnv, "")
	t.Setenv("C3PO_DEBUG", "")
	return home, cfgDir
}

func TestBuildRunOptions_DirectMode(t *testing.T) {
	_, cfgDir := setupTestDirs(t)
	t.Setenv(auth.TokenEnv, "sk-ant-env-token")

	opts, err := BuildRunOptions(Options{
		Prompt:      "hello world",
		WorkDir:     "/src/project",
		ProjectName: "project",
		Stream:      true,
	})
	if err != nil {
		t.Fatalf("BuildRunOptions() error = %v", err)
	}

	wantVolumes := []string{
		cfgDir + ":/home/node/.claude",
		"/src/project:/workspace",
		filepath.Join(cfgDir, config.SettingsFileName) + ":/home/node/claude-docker.yaml",
		filepath.Join(cfgDir, config.UserConfigFileName) + ":/home/node/.claude.json",
	}
	if !slices.Equal(opts.Volumes, wantVolumes) {
		t.Errorf("Volumes = %v, want %v", opts.Volumes, wantVolumes)
	}

	wantEnv := []string{
		"CLAUDE_PROJECT_NAME=project",
		"CLAUDE_CODE_OAUTH_TOKEN=sk-ant-env-token",
	}
	if !slices.Equal(opts.Env, wantEnv) {
		t.Errorf("Env = %v, want %v", opts.Env, wantEnv)
	}

	wantCommand := []string{"--output-format", "stream-json", "--verbose", "-p", "hello world"}
	if !slices.Equal(opts.Command, wantCommand) {
		t.Errorf("Command = %v, want %v", opts.Command, wantCommand)
	}

	if opts.Image != "claude-code" {
		t.Errorf("Image = %q", opts.Image)
	}
	if !opts.Remove {
		t.Error("Remove should be set")
	}
	if want := fmt.Sprintf("claude-code-%d", os.Getpid()); opts.Name != want {
		t.Errorf("Name = %q, want %q", opts.Name, want)
	}
}

func TestBuildRunOptions_NoStream(t *testing.T) {
	setupTestDirs(t)
	t.Setenv(auth.TokenEnv, "sk-ant-x")

	opts, err := BuildRunOptions(Options{Prompt: "hi", WorkDir: "/w", ProjectName: "w"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(opts.Command, []string{"-p", "hi"}) {
		t.Errorf("Command = %v", opts.Command)
	}
}

func TestBuildRunOptions_AgentMode(t *testing.T) {
	setupTestDirs(t)

	opts, err := BuildRunOptions(Options{
		WorkDir:     "/agents/notes",
		ProjectName: "notes",
		AgentMode:   true,
		Model:       "opus",
		Env:         []string{"FOO=bar", "BAZ=qux"},
		Init:        []string{"git pull"},
		PostRun:     []string{"git push"},
		Stream:      true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if opts.Env[0] != "CLAUDE_PROJECT_NAME=notes" || opts.Env[1] != "CLAUDE_AGENT_MODE=1" {
		t.Errorf("Env head = %v", opts.Env[:2])
	}
	if !slices.Contains(opts.Env, "FOO=bar") || !slices.Contains(opts.Env, "BAZ=qux") {
		t.Errorf("agent env missing: %v", opts.Env)
	}
	var hasInit, hasPostRun bool
	for _, e := range opts.Env {
		hasInit = hasInit || strings.HasPrefix(e, "AGENT_INIT=")
		hasPostRun = hasPostRun || strings.HasPrefix(e, "AGENT_POST_RUN=")
	}
	if !hasInit || !hasPostRun {
		t.Errorf("encoded commands missing: %v", opts.Env)
	}

	// Default agent prompt and model flag.
	joined := strings.Join(opts.Command, " ")
	if !strings.Contains(joined, "-p "+DefaultAgentPrompt) {
		t.Errorf("Command = %v", opts.Command)
	}
	if !strings.Contains(joined, "--model opus") {
		t.Errorf("Command = %v", opts.Command)
	}
}

func TestBuildRunOptions_AgentPromptOverride(t *testing.T) {
	setupTestDirs(t)

	opts, err := BuildRunOptions(Options{
		WorkDir:     "/w",
		ProjectName: "w",
		AgentMode:   true,
		Prompt:      "/review auto",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(opts.Command, "/review auto") {
		t.Errorf("Command = %v", opts.Command)
	}
	if slices.Contains(opts.Command, DefaultAgentPrompt) {
		t.Errorf("default prompt should be overridden: %v", opts.Command)
	}
}

func TestBuildRunOptions_TokenFromFile(t *testing.T) {
	setupTestDirs(t)

	if _, err := auth.SaveToken("sk-ant-stored"); err != nil {
		t.Fatal(err)
	}
	opts, err := BuildRunOptions(Options{Prompt: "x", WorkDir: "/w", ProjectName: "w"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(opts.Env, "CLAUDE_CODE_OAUTH_TOKEN=sk-ant-stored") {
		t.Errorf("stored token missing: %v", opts.Env)
	}
}

func TestBuildRunOptions_CredentialsMount(t *testing.T) {
	home, _ := setupTestDirs(t)

	credsDir := filepath.Join(home, ".claude")
	if err := os.MkdirAll(credsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	credsPath := filepath.Join(credsDir, ".credentials.json")
	if err := os.WriteFile(credsPath, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	opts, err := BuildRunOptions(Options{Prompt: "x", WorkDir: "/w", ProjectName: "w"})
	if err != nil {
		t.Fatal(err)
	}
	want := credsPath + ":/home/node/.claude/.credentials.json:ro"
	if !slices.Contains(opts.Volumes, want) {
		t.Errorf("credentials mount missing: %v", opts.Volumes)
	}
	// Read-only mount sits between the workspace and the settings mounts.
	if opts.Volumes[2] != want {
		t.Errorf("credentials mount out of order: %v", opts.Volumes)
	}
}

func TestBuildRunOptions_C3PODebugPassthrough(t *testing.T) {
	setupTestDirs(t)
	t.Setenv("C3PO_DEBUG", "1")
	t.Setenv(auth.TokenEnv, "sk-ant-x")

	opts, err := BuildRunOptions(Options{Prompt: "x", WorkDir: "/w", ProjectName: "w"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(opts.Env, "C3PO_DEBUG=1") {
		t.Errorf("C3PO_DEBUG not passed through: %v", opts.Env)
	}
}

func TestPrepare(t *testing.T) {
	_, cfgDir := setupTestDirs(t)

	contextDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(contextDir, containerInstructionsFile), []byte("# rules\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLAUDE_DOCKER_BUILD_CONTEXT", contextDir)

	if err := Prepare(nil); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	for _, name := range []string{config.SettingsFileName, config.UserConfigFileName, "CLAUDE.md"} {
		if _, err := os.Stat(filepath.Join(cfgDir, name)); err != nil {
			t.Errorf("Prepare() did not create %s: %v", name, err)
		}
	}
	data, _ := os.ReadFile(filepath.Join(cfgDir, "CLAUDE.md"))
	if string(data) != "# rules\n" {
		t.Errorf("CLAUDE.md content = %q", data)
	}
}

func TestPrepare_NoInstructionsFile(t *testing.T) {
	_, cfgDir := setupTestDirs(t)
	t.Setenv("CLAUDE_DOCKER_BUILD_CONTEXT", t.TempDir())

	if err := Prepare(nil); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfgDir, "CLAUDE.md")); !os.IsNotExist(err) {
		t.Error("CLAUDE.md should not exist without a source file")
	}
}
