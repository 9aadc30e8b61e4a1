// SPDX-License-Identifier: MPL-2.0

package stream

import (
	"os"
	"os/exec"
	"path/filepath"
)

// FilterName is the external stream formatter executable.
const FilterName = "format-stream"

// FindFilter locates the format-stream executable: the build context
// directory first, then PATH. ok is false when neither has it, in which
// case the built-in renderer takes over.
func FindFilter(contextDir string) (string, bool) {
	if contextDir != "" {
		candidate := filepath.Join(contextDir, FilterName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate, true
		}
	}
	if path, err := exec.LookPath(FilterName); err == nil {
		return path, true
	}
	return "", false
}
