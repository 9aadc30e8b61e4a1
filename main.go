// SPDX-License-Identifier: MPL-2.0

// claude-docker launches the Claude Code CLI inside an isolated container.
package main

import cmd "claude-docker/cmd/claude-docker"

func main() {
	cmd.Execute()
}
