// SPDX-License-Identifier: MPL-2.0

// Package run orchestrates a claude container session: it assembles the
// mounts, environment, and claude arguments shared by direct and agent
// runs, launches the container, wires the streaming pipeline, and stops
// the container on interrupt.
package run
