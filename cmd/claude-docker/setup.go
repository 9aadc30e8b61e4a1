// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claude-docker/internal/auth"
	"claude-docker/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup [token]",
	Short: "Set up authentication",
	Long: `Store a long-lived OAuth token for container runs. With a token argument
the token is validated and saved. Without one, 'claude setup-token' runs
interactively and the token is extracted from its output.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.EnsureDir(); err != nil {
			return displayError(err)
		}
		if err := config.EnsureSettingsFile(); err != nil {
			return displayError(err)
		}

		if len(args) == 1 {
			return saveToken(args[0])
		}

		fmt.Fprintln(os.Stderr, "Running 'claude setup-token' to generate a long-lived token...")
		token, err := auth.SetupToken(cmd.Context(), os.Stdin, os.Stdout)
		if err != nil {
			return displayError(err)
		}
		return saveToken(token)
	},
}

func saveToken(token string) error {
	path, err := auth.SaveToken(token)
	if err != nil {
		return displayError(err)
	}
	fmt.Fprintln(os.Stderr, SuccessStyle.Render("Token saved to ")+CmdStyle.Render(path))
	return nil
}
