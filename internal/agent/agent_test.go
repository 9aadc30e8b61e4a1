// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claude-docker/internal/config"
)

func TestParse_StringShorthand(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte("notes: /home/user/Documents/Notes\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cfg, err := f.Resolve("notes")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Workspace != "/home/user/Documents/Notes" {
		t.Errorf("Workspace = %q", cfg.Workspace)
	}
	if cfg.Model != "" || len(cfg.Env) != 0 || len(cfg.Init) != 0 {
		t.Errorf("shorthand entry should have zero-value extras: %+v", cfg)
	}
}

func TestParse_BlockForm(t *testing.T) {
	t.Parallel()

	content := `coder:
  workspace: /home/user/Projects
  model: opus
  env:
    DEBUG: "1"
    API_KEY: secret
  init:
    - git pull
    - npm install
  prompt: /review auto
  post_run:
    - git push
  triggers:
    - daily 09:00
`
	f, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cfg, err := f.Resolve("coder")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Workspace != "/home/user/Projects" {
		t.Errorf("Workspace = %q", cfg.Workspace)
	}
	if cfg.Model != "opus" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Env["DEBUG"] != "1" || cfg.Env["API_KEY"] != "secret" {
		t.Errorf("Env = %v", cfg.Env)
	}
	if len(cfg.Init) != 2 || cfg.Init[0] != "git pull" {
		t.Errorf("Init = %v", cfg.Init)
	}
	if cfg.Prompt != "/review auto" {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if len(cfg.PostRun) != 1 || cfg.PostRun[0] != "git push" {
		t.Errorf("PostRun = %v", cfg.PostRun)
	}
	if len(cfg.Triggers) != 1 || cfg.Triggers[0] != "daily 09:00" {
		t.Errorf("Triggers = %v", cfg.Triggers)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "# only comments\n", "null\n"} {
		f, err := Parse([]byte(content))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", content, err)
		}
		if f.Len() != 0 {
			t.Errorf("Parse(%q).Len() = %d, want 0", content, f.Len())
		}
	}
}

func TestParse_NotMapping(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("- a\n- b\n")); err == nil {
		t.Fatal("Parse() should reject a top-level list")
	}
}

func TestResolve_Missing(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte("notes: /tmp/notes\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Resolve("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(missing) error = %v, want ErrNotFound", err)
	}
}

func TestResolve_NoWorkspace(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte("broken:\n  model: opus\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Resolve("broken"); err == nil {
		t.Fatal("Resolve() should fail for an entry without a workspace")
	}
}

func TestResolve_TildeExpansion(t *testing.T) {
	home := t.TempDir()
	config.SetHomeDirOverride(home)
	t.Cleanup(config.Reset)

	f, err := Parse([]byte("notes: ~/Documents/Notes\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Resolve("notes")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, "Documents", "Notes")
	if cfg.Workspace != want {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, want)
	}

	// The parsed file keeps the tilde.
	data, err := f.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "~/Documents/Notes") {
		t.Errorf("stored form lost the tilde: %s", data)
	}
}

func TestNames_FileOrder(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte("zeta: /a\nalpha: /b\nmid: /c\n"))
	if err != nil {
		t.Fatal(err)
	}
	names := f.Names()
	want := []string{"zeta", "alpha", "mid"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSummaries(t *testing.T) {
	t.Parallel()

	content := `notes: ~/Notes
coder:
  workspace: /src
  model: opus
  env:
    A: "1"
    B: "2"
  init:
    - make deps
  triggers:
    - hourly
`
	f, err := Parse([]byte(content))
	if err != nil {
		t.Fatal(err)
	}
	sums := f.Summaries()
	if len(sums) != 2 {
		t.Fatalf("Summaries() len = %d", len(sums))
	}
	if sums[0].Name != "notes" || sums[0].Workspace != "~/Notes" {
		t.Errorf("shorthand summary = %+v", sums[0])
	}
	s := sums[1]
	if s.Name != "coder" || s.Workspace != "/src" || s.Model != "opus" {
		t.Errorf("block summary = %+v", s)
	}
	if s.EnvCount != 2 || s.InitCount != 1 {
		t.Errorf("counts = env %d init %d", s.EnvCount, s.InitCount)
	}
	if len(s.Triggers) != 1 || s.Triggers[0] != "hourly" {
		t.Errorf("Triggers = %v", s.Triggers)
	}
}

func TestLoad_MigratesShorthand(t *testing.T) {
	home := t.TempDir()
	cfgDir := filepath.Join(home, config.AppDirName)
	config.SetHomeDirOverride(home)
	config.SetConfigDirOverride(cfgDir)
	t.Cleanup(config.Reset)

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfgDir, config.AgentsFileName)
	content := "notes: ~/Notes\ncoder:\n  workspace: /src\n  custom_key: kept\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Len() = %d", f.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rewritten := string(data)
	if !strings.Contains(rewritten, "notes:\n  workspace: ~/Notes") {
		t.Errorf("shorthand not migrated:\n%s", rewritten)
	}
	if !strings.Contains(rewritten, "custom_key: kept") {
		t.Errorf("unknown key dropped by migration:\n%s", rewritten)
	}

	// A second load finds nothing to migrate and leaves the file alone.
	if _, err := Load(); err != nil {
		t.Fatal(err)
	}
	data2, _ := os.ReadFile(path)
	if string(data2) != rewritten {
		t.Errorf("second Load() changed the file:\n%s", data2)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	home := t.TempDir()
	config.SetHomeDirOverride(home)
	config.SetConfigDirOverride(filepath.Join(home, config.AppDirName))
	t.Cleanup(config.Reset)

	f, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	config.SetHomeDirOverride(home)
	t.Cleanup(config.Reset)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/Notes", filepath.Join(home, "Notes")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~user/x", "~user/x"},
	}
	for _, tt := range tests {
		got, err := ExpandTilde(tt.in)
		if err != nil {
			t.Fatalf("ExpandTilde(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
