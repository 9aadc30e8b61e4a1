// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Errors raised by CLI operations carry the operation that failed, the file or
// entity involved, and concrete remediation steps ("Run 'claude-docker setup'
// to store a token"), so that failures surface as guidance rather than bare
// error strings.
package issue
