// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claude-docker/internal/config"
	"claude-docker/internal/stream"
)

var olderThanFlag string

var cleanLogsCmd = &cobra.Command{
	Use:   "clean-logs",
	Short: "Delete session logs past the retention window",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigWithFlags()
		if err != nil {
			return displayError(err)
		}

		retentionDays := cfg.StreamLogging.RetentionDays
		if olderThanFlag != "" {
			retentionDays, err = stream.ParseOlderThan(olderThanFlag)
			if err != nil {
				return displayError(err)
			}
		}

		dir, err := config.SessionLogsDir(cfg)
		if err != nil {
			return displayError(err)
		}

		res, err := stream.Clean(dir, retentionDays)
		if err != nil {
			return displayError(err)
		}

		fmt.Fprintf(os.Stderr, "Cleaned up %d log file(s)\n", res.Deleted)
		if res.FreedBytes > 0 {
			fmt.Fprintf(os.Stderr, "Total size freed: %.2f MB\n", float64(res.FreedBytes)/(1024*1024))
		}
		return nil
	},
}

func init() {
	cleanLogsCmd.Flags().StringVar(&olderThanFlag, "older-than", "", "delete logs older than this many days (e.g., 7d)")
}
