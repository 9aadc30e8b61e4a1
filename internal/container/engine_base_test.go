// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"slices"
	"testing"
)

func TestBaseCLIEngine_BuildArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("docker", "/usr/bin/docker")

	tests := []struct {
		name     string
		opts     BuildOptions
		expected []string
	}{
		{
			name:     "minimal build",
			opts:     BuildOptions{ContextDir: "."},
			expected: []string{"build", "."},
		},
		{
			name: "build with tag and label",
			opts: BuildOptions{
				ContextDir: "/opt/claude-docker",
				Tag:        "claude-code",
				Labels:     []string{"build.hash=abc123"},
			},
			expected: []string{"build", "--label", "build.hash=abc123", "-t", "claude-code", "/opt/claude-docker"},
		},
		{
			name: "build with dockerfile and no-cache",
			opts: BuildOptions{
				ContextDir: "/opt/claude-docker",
				Dockerfile: "/opt/claude-docker/Dockerfile",
				NoCache:    true,
			},
			expected: []string{"build", "-f", "/opt/claude-docker/Dockerfile", "--no-cache", "/opt/claude-docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := engine.BuildArgs(tt.opts)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBaseCLIEngine_RunArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("docker", "/usr/bin/docker")

	tests := []struct {
		name     string
		opts     RunOptions
		expected []string
	}{
		{
			name: "prompt run",
			opts: RunOptions{
				Image:   "claude-code",
				Command: []string{"-p", "hello world"},
				Remove:  true,
				Name:    "claude-code-42",
				Env:     []string{"CLAUDE_PROJECT_NAME=notes"},
				Volumes: []string{"/home/u/.claude-docker:/home/node/.claude"},
			},
			expected: []string{
				"run", "--rm", "--name", "claude-code-42",
				"-e", "CLAUDE_PROJECT_NAME=notes",
				"-v", "/home/u/.claude-docker:/home/node/.claude",
				"claude-code", "-p", "hello world",
			},
		},
		{
			name: "interactive shell with entrypoint override",
			opts: RunOptions{
				Image:       "claude-code",
				Entrypoint:  "bash",
				Remove:      true,
				Interactive: true,
				TTY:         true,
			},
			expected: []string{"run", "--rm", "-i", "-t", "--entrypoint", "bash", "claude-code"},
		},
		{
			name: "workdir and multiple env preserve order",
			opts: RunOptions{
				Image:   "claude-code",
				WorkDir: "/workspace",
				Env:     []string{"A=1", "B=2"},
			},
			expected: []string{"run", "-w", "/workspace", "-e", "A=1", "-e", "B=2", "claude-code"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := engine.RunArgs(tt.opts)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("RunArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBaseCLIEngine_ImageLabel(t *testing.T) {
	t.Parallel()

	t.Run("label present", func(t *testing.T) {
		t.Parallel()
		rec := NewMockCommandRecorder()
		rec.Stdout = "deadbeef\n"
		engine := NewBaseCLIEngine("docker", "/usr/bin/docker", WithExecCommand(rec.CommandFunc(t)))

		got, err := engine.ImageLabel(context.Background(), "claude-code", "build.hash")
		if err != nil {
			t.Fatalf("ImageLabel() error = %v", err)
		}
		if got != "deadbeef" {
			t.Errorf("ImageLabel() = %q, want %q", got, "deadbeef")
		}

		args := rec.LastArgs(t)
		want := []string{"image", "inspect", "claude-code", "--format", `{{index .Config.Labels "build.hash"}}`}
		if !slices.Equal(args, want) {
			t.Errorf("inspect args = %v, want %v", args, want)
		}
	})

	t.Run("label missing renders empty", func(t *testing.T) {
		t.Parallel()
		rec := NewMockCommandRecorder()
		rec.Stdout = "<no value>\n"
		engine := NewBaseCLIEngine("docker", "/usr/bin/docker", WithExecCommand(rec.CommandFunc(t)))

		got, err := engine.ImageLabel(context.Background(), "claude-code", "build.hash")
		if err != nil {
			t.Fatalf("ImageLabel() error = %v", err)
		}
		if got != "" {
			t.Errorf("ImageLabel() = %q, want empty", got)
		}
	})
}

func TestBaseCLIEngine_Stop(t *testing.T) {
	t.Parallel()
	rec := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("docker", "/usr/bin/docker", WithExecCommand(rec.CommandFunc(t)))

	if err := engine.Stop(context.Background(), "claude-code-99"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if want := []string{"stop", "claude-code-99"}; !slices.Equal(rec.LastArgs(t), want) {
		t.Errorf("stop args = %v, want %v", rec.LastArgs(t), want)
	}
}

func TestBaseCLIEngine_Run_ExitCode(t *testing.T) {
	t.Parallel()
	rec := NewMockCommandRecorder()
	rec.ExitCode = 3
	engine := NewBaseCLIEngine("docker", "/usr/bin/docker", WithExecCommand(rec.CommandFunc(t)))

	result, err := engine.Run(context.Background(), RunOptions{Image: "claude-code"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("Error = %v, want nil for plain exit code", result.Error)
	}
}

func TestBaseCLIEngine_Available(t *testing.T) {
	t.Parallel()
	if NewBaseCLIEngine("docker", "").Available() {
		t.Error("engine with empty binary path should not be available")
	}
	if !NewBaseCLIEngine("docker", "/usr/bin/docker").Available() {
		t.Error("engine with binary path should be available")
	}
}
