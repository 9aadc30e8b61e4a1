// SPDX-License-Identifier: MPL-2.0

// Package image manages the claude-code container image: resolving the
// build context, hashing its inputs, and rebuilding when the hash stored
// on the image no longer matches.
package image
