// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/term"

	"claude-docker/internal/issue"
)

// SetupToken runs `claude setup-token` attached to a pseudo-terminal so
// the interactive login flow works, mirroring its output to stdout while
// capturing it for token extraction. Returns the extracted token.
func SetupToken(ctx context.Context, stdin *os.File, stdout io.Writer) (string, error) {
	cmd := exec.CommandContext(ctx, "claude", "setup-token")
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("run claude setup-token").
			WithSuggestion("Install the claude CLI on the host, or pass a token directly: claude-docker setup <token>").
			Wrap(err).
			BuildError()
	}
	defer ptmx.Close()

	// Raw mode so keystrokes reach the child unbuffered.
	if stdin != nil && term.IsTerminal(int(stdin.Fd())) {
		oldState, err := term.MakeRaw(int(stdin.Fd()))
		if err == nil {
			defer term.Restore(int(stdin.Fd()), oldState)
		}
		go func() { _, _ = io.Copy(ptmx, stdin) }()
	}

	var captured bytes.Buffer
	// The pty returns EIO once the child exits; that is the normal EOF.
	_, copyErr := io.Copy(io.MultiWriter(stdout, &captured), ptmx)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("claude setup-token exited with code %d", exitErr.ExitCode())
		}
		return "", fmt.Errorf("claude setup-token failed: %w", err)
	}
	if copyErr != nil && !errors.Is(copyErr, io.EOF) && captured.Len() == 0 {
		return "", fmt.Errorf("failed to read setup-token output: %w", copyErr)
	}

	token, ok := ExtractToken(captured.String())
	if !ok {
		return "", issue.NewErrorContext().
			WithOperation("extract token from setup-token output").
			WithSuggestion("Provide the token manually: claude-docker setup <your-token>").
			Wrap(errors.New("no token found in output")).
			BuildError()
	}
	return token, nil
}
