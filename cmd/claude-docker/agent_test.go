// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"claude-docker/internal/config"
)

func setupAgentsFile(t *testing.T, content string) {
	t.Helper()
	home := t.TempDir()
	cfgDir := filepath.Join(home, config.AppDirName)
	config.SetHomeDirOverride(home)
	config.SetConfigDirOverride(cfgDir)
	t.Cleanup(config.Reset)
	if content != "" {
		if err := os.MkdirAll(cfgDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(cfgDir, config.AgentsFileName), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func captureList(t *testing.T) string {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	if err := listAgents(cmd); err != nil {
		t.Fatalf("listAgents() error = %v", err)
	}
	return out.String()
}

func TestListAgents_Empty(t *testing.T) {
	setupAgentsFile(t, "")

	got := captureList(t)
	if !strings.Contains(got, "No agents configured") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, config.AgentsFileName) {
		t.Errorf("output should name the agents file: %q", got)
	}
}

func TestListAgents_Formats(t *testing.T) {
	setupAgentsFile(t, `notes: ~/Notes
coder:
  workspace: /src
  model: opus
  env:
    A: "1"
  init:
    - make deps
  triggers:
    - daily 09:00
`)

	got := captureList(t)
	if !strings.Contains(got, "Available agents:") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "notes") || !strings.Contains(got, "~/Notes") {
		t.Errorf("shorthand agent missing: %q", got)
	}
	for _, want := range []string{"(model: opus)", "[env: 1 init: 1]", "daily 09:00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestSortedEnv(t *testing.T) {
	t.Parallel()

	got := sortedEnv(map[string]string{"ZED": "3", "ALPHA": "1", "MID": "2"})
	want := []string{"ALPHA=1", "MID=2", "ZED=3"}
	if !slices.Equal(got, want) {
		t.Errorf("sortedEnv() = %v, want %v", got, want)
	}

	if sortedEnv(nil) != nil {
		t.Error("sortedEnv(nil) should be nil")
	}
}

func TestAgentCommandStructure(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, 2)
	for _, sub := range agentCmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"list", "run"} {
		if !slices.Contains(names, want) {
			t.Errorf("agent subcommand %q not registered (have %v)", want, names)
		}
	}
}
