// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Engine defines the interface for container operations.
type Engine interface {
	// Name returns the engine name (docker or finch)
	Name() string
	// BinaryPath returns the resolved path of the engine binary
	BinaryPath() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)

	// Build builds an image from a Dockerfile
	Build(ctx context.Context, opts BuildOptions) error
	// Run runs a command in a container
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
	// Stop stops a running container
	Stop(ctx context.Context, containerName string) error
	// ImageExists checks if an image exists locally
	ImageExists(ctx context.Context, image string) (bool, error)
	// ImageLabel reads a label value from an image, "" if unset
	ImageLabel(ctx context.Context, image, label string) (string, error)
	// RemoveImage removes an image
	RemoveImage(ctx context.Context, image string, force bool) error

	// BuildRunArgs builds the argument slice for a 'run' command without
	// executing. Used when the caller needs to own the exec.Cmd, e.g. to
	// attach a stdout pipe for stream formatting.
	BuildRunArgs(opts RunOptions) []string
	// CreateCommand creates an exec.Cmd for the given engine arguments
	CreateCommand(ctx context.Context, args ...string) *exec.Cmd
}

// BuildOptions contains options for building an image.
type BuildOptions struct {
	// ContextDir is the build context directory
	ContextDir string
	// Dockerfile is the path to the Dockerfile (relative to ContextDir);
	// empty means the engine default
	Dockerfile string
	// Tag is the image tag
	Tag string
	// Labels are image labels in "key=value" format, applied in order
	Labels []string
	// NoCache disables the build cache
	NoCache bool
	// Stdout is where to write build output
	Stdout io.Writer
	// Stderr is where to write build errors
	Stderr io.Writer
}

// RunOptions contains options for running a container.
type RunOptions struct {
	// Image is the image to run
	Image string
	// Command is appended after the image (arguments to the entrypoint)
	Command []string
	// Entrypoint overrides the image entrypoint when non-empty
	Entrypoint string
	// WorkDir is the working directory inside the container
	WorkDir string
	// Env contains environment variables in "KEY=VALUE" format, applied in order
	Env []string
	// Volumes are volume mounts in "host:container[:ro]" format
	Volumes []string
	// Remove automatically removes the container after exit
	Remove bool
	// Name is the container name
	Name string
	// Stdin is the standard input
	Stdin io.Reader
	// Stdout is where to write standard output
	Stdout io.Writer
	// Stderr is where to write standard error
	Stderr io.Writer
	// Interactive enables interactive mode (-i)
	Interactive bool
	// TTY allocates a pseudo-TTY (-t)
	TTY bool
}

// RunResult contains the result of running a container.
type RunResult struct {
	// ExitCode is the container exit code
	ExitCode int
	// Error contains infrastructure failures (binary missing, etc.);
	// a non-zero exit code alone does not set it
	Error error
}

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypeFinch  EngineType = "finch"
)

// ErrEngineNotAvailable is returned when a container engine is not available.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a container engine of the requested type, falling back
// to the other engine when the preferred one is missing.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		finchEngine := NewFinchEngine()
		if finchEngine.Available() {
			return finchEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and finch fallback is also not available",
		}

	case EngineTypeFinch:
		engine := NewFinchEngine()
		if engine.Available() {
			return engine, nil
		}
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "finch",
			Reason: "finch is not installed or not accessible, and docker fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine.
// Docker is preferred; finch is the fallback.
func AutoDetectEngine() (Engine, error) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	finch := NewFinchEngine()
	if finch.Available() {
		return finch, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or finch) is available on this system",
	}
}
