// SPDX-License-Identifier: MPL-2.0

package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"claude-docker/internal/config"
	"claude-docker/internal/container"
	"claude-docker/internal/image"
	"claude-docker/internal/stream"
)

// InterruptExitCode is returned when a run is stopped by SIGINT/SIGTERM.
const InterruptExitCode = 130

const stopTimeout = 10 * time.Second

// Runner executes container sessions against one engine.
type Runner struct {
	Engine container.Engine
	Config *config.Config

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a runner wired to the process stdio.
func NewRunner(engine container.Engine, cfg *config.Config) *Runner {
	return &Runner{
		Engine: engine,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Execute runs one session and returns the exit code to propagate. The
// container is stopped on SIGINT/SIGTERM, in which case the exit code is
// InterruptExitCode.
func (r *Runner) Execute(ctx context.Context, opts Options) (int, error) {
	runOpts, err := BuildRunOptions(opts)
	if err != nil {
		return 1, err
	}

	var interrupted atomic.Bool
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			interrupted.Store(true)
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if err := r.Engine.Stop(stopCtx, runOpts.Name); err != nil {
				log.Debug("failed to stop container", "name", runOpts.Name, "error", err)
			}
		case <-done:
		}
	}()
	defer close(done)

	var exitCode int
	if opts.Stream && !opts.StreamRaw {
		exitCode, err = r.runStreaming(ctx, runOpts, opts)
	} else {
		exitCode, err = r.runAttached(ctx, runOpts)
	}
	if interrupted.Load() {
		return InterruptExitCode, nil
	}
	return exitCode, err
}

// runAttached runs with stdio passed straight through. Used for
// --no-stream and for raw stream-json output.
func (r *Runner) runAttached(ctx context.Context, runOpts container.RunOptions) (int, error) {
	runOpts.Stdin = r.Stdin
	runOpts.Stdout = r.Stdout
	runOpts.Stderr = r.Stderr
	res, err := r.Engine.Run(ctx, runOpts)
	if err != nil {
		return 1, err
	}
	return res.ExitCode, res.Error
}

// runStreaming owns the container process so its stdout can be scanned
// line by line: each stream-json event is teed into the session log and
// handed to the external filter or the built-in renderer.
func (r *Runner) runStreaming(ctx context.Context, runOpts container.RunOptions, opts Options) (int, error) {
	args := r.Engine.BuildRunArgs(runOpts)
	cmd := r.Engine.CreateCommand(ctx, args...)
	cmd.Stderr = r.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 1, fmt.Errorf("failed to open container stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("failed to start container: %w", err)
	}

	logger := r.openSessionLog(opts.ProjectName)
	if logger != nil {
		defer logger.Close()
	}

	sink, finish := r.openSink(ctx, opts.Verbose)
	scanErr := scanLines(stdout, func(line []byte) {
		if logger != nil {
			logger.WriteLine(line)
		}
		sink(line)
	})
	if scanErr != nil {
		// An oversized line aborts the scan. Keep draining the pipe so
		// the container never blocks writing and Wait can return.
		log.Debug("stream scan ended, draining remaining output", "error", scanErr)
		_, _ = io.Copy(io.Discard, stdout)
	}
	finish()

	waitErr := cmd.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("container run failed: %w", waitErr)
	}
	return 0, nil
}

// openSink picks the line consumer: the external format-stream filter
// when installed, the built-in renderer otherwise. finish must be called
// after the last line.
func (r *Runner) openSink(ctx context.Context, verbose bool) (sink func([]byte), finish func()) {
	contextDir, err := image.ResolveBuildContext(r.Config)
	if err != nil {
		contextDir = ""
	}
	if path, ok := stream.FindFilter(contextDir); ok {
		filter := exec.CommandContext(ctx, path)
		filter.Stdout = r.Stdout
		filter.Stderr = r.Stderr
		stdin, err := filter.StdinPipe()
		if err == nil && filter.Start() == nil {
			return func(line []byte) {
					_, _ = stdin.Write(append(line, '\n'))
				}, func() {
					stdin.Close()
					if err := filter.Wait(); err != nil {
						log.Debug("format-stream exited", "error", err)
					}
				}
		}
		log.Debug("falling back to built-in renderer", "filter", path, "error", err)
	}

	renderer := stream.NewRenderer(r.Stdout, verbose)
	return func(line []byte) { renderer.RenderLine(line) }, func() {}
}

// openSessionLog returns a logger when stream logging is enabled, nil
// otherwise. Logging failures never block a run.
func (r *Runner) openSessionLog(project string) *stream.SessionLogger {
	if r.Config == nil || !r.Config.StreamLogging.Enabled {
		return nil
	}
	dir, err := config.SessionLogsDir(r.Config)
	if err != nil {
		log.Debug("session log directory unavailable", "error", err)
		return nil
	}
	logger, err := stream.NewSessionLogger(dir, project, r.Config.StreamLogging.MaxFileSizeMB)
	if err != nil {
		log.Debug("session logging disabled", "error", err)
		return nil
	}
	return logger
}

func scanLines(r io.Reader, fn func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		fn(scanner.Bytes())
	}
	return scanner.Err()
}
