// SPDX-License-Identifier: MPL-2.0

package stream

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CleanResult reports what a log cleanup removed.
type CleanResult struct {
	Deleted    int
	FreedBytes int64
}

// Clean deletes *.json session logs in dir whose mtime is older than the
// cutoff. A missing directory is a no-op. Individual delete failures are
// reported on stderr and skipped so one stuck file does not abort the
// sweep.
func Clean(dir string, retentionDays int) (*CleanResult, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	res := &CleanResult{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, nil
		}
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting %s: %v\n", path, err)
			continue
		}
		res.Deleted++
		res.FreedBytes += info.Size()
	}
	return res, nil
}

// ParseOlderThan parses the --older-than value ("7d" or "7") into days.
func ParseOlderThan(value string) (int, error) {
	trimmed := strings.TrimSuffix(value, "d")
	days, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("--older-than must be a number followed by 'd' (e.g., 7d), got %q", value)
	}
	if days < 0 {
		return 0, fmt.Errorf("--older-than must not be negative, got %q", value)
	}
	return days, nil
}
