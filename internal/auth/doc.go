// SPDX-License-Identifier: MPL-2.0

// Package auth resolves Claude Code credentials for container runs: the
// CLAUDE_CODE_OAUTH_TOKEN environment variable, the stored token file, or
// the host credentials file, in that order. It also drives the interactive
// `claude setup-token` flow and extracts the token from its output.
package auth
