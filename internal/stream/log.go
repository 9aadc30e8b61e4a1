// SPDX-License-Identifier: MPL-2.0

package stream

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionLogger tees raw stream-json lines into a session log file. When
// the size cap is reached the logger silently stops writing; the run it
// observes is never affected.
type SessionLogger struct {
	file     *os.File
	path     string
	written  int64
	maxBytes int64
	capped   bool
}

// NewSessionLogger opens <dir>/<project>-<unixtime>.json (0600) for the
// current session. maxSizeMB <= 0 means no cap.
func NewSessionLogger(dir, project string, maxSizeMB int) (*SessionLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%d.json", project, time.Now().Unix()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create session log: %w", err)
	}
	return &SessionLogger{
		file:     file,
		path:     path,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
	}, nil
}

// Path returns the log file location.
func (l *SessionLogger) Path() string {
	return l.path
}

// Capped reports whether the size cap stopped logging.
func (l *SessionLogger) Capped() bool {
	return l.capped
}

// WriteLine appends one raw event line. Write failures and the size cap
// both stop logging without surfacing an error.
func (l *SessionLogger) WriteLine(line []byte) {
	if l.capped || l.file == nil {
		return
	}
	if l.maxBytes > 0 && l.written+int64(len(line))+1 > l.maxBytes {
		l.capped = true
		return
	}
	n, err := l.file.Write(append(line, '\n'))
	l.written += int64(n)
	if err != nil {
		l.capped = true
	}
}

// Close flushes and closes the log file.
func (l *SessionLogger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
