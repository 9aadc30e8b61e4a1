// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// UsageExitCode is the exit code for usage errors: bad flags, wrong
// argument counts, or a bare invocation with nothing to do.
const UsageExitCode = 2

// ExitError signals a non-zero exit code without forcing os.Exit in RunE
// handlers. Container exit codes propagate through it.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageArgs wraps a positional-args validator so its failures carry
// UsageExitCode.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &ExitError{Code: UsageExitCode, Err: err}
		}
		return nil
	}
}
