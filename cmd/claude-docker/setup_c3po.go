// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claude-docker/internal/image"
	"claude-docker/internal/plugin"
	"claude-docker/internal/run"
)

var setupC3POCmd = &cobra.Command{
	Use:   "setup-c3po <url> <token>",
	Short: "Install and enroll the c3po plugin in the container",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigWithFlags()
		if err != nil {
			return displayError(err)
		}
		if err := run.Prepare(cfg); err != nil {
			return displayError(err)
		}

		eng, err := detectEngine(cfg)
		if err != nil {
			return displayError(engineError(err))
		}

		ctx := cmd.Context()
		if err := image.Ensure(ctx, eng, cfg, forceBuild, os.Stderr); err != nil {
			return displayError(err)
		}

		if err := plugin.Setup(ctx, eng, args[0], args[1], os.Stdin, os.Stdout, os.Stderr); err != nil {
			return displayError(err)
		}
		fmt.Fprintln(os.Stderr, SuccessStyle.Render("c3po plugin installed and enrolled."))
		return nil
	},
}
