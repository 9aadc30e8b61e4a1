// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer over the docker and finch
// CLIs. All operations shell out to the engine binary; nothing talks to the
// daemon API directly, so the same code path works for both engines.
package container
