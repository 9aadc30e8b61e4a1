// SPDX-License-Identifier: MPL-2.0

// Package stream handles the stream-json output of a claude run: piping it
// through the external format-stream filter when one is installed, falling
// back to a built-in renderer otherwise, and teeing the raw lines into a
// session log.
package stream
