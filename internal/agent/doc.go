// SPDX-License-Identifier: MPL-2.0

// Package agent loads ~/.claude-docker/agents.yaml. An agent is a named
// preset (workspace, model, env, init commands) for an unattended run.
// Entries come in two shapes: a bare string (the workspace) or a block;
// loading migrates string entries to the block shape in place so the file
// converges on one canonical form.
package agent
