// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"regexp"
	"strings"
)

var (
	ansiRe  = regexp.MustCompile(`\x1b\[[^a-zA-Z]*[a-zA-Z]`)
	tokenRe = regexp.MustCompile(`sk-(?:ant|at)-[a-zA-Z0-9_-]+`)
)

// StripANSI removes CSI escape sequences from terminal output.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// ExtractToken pulls an OAuth token out of `claude setup-token` output.
// A candidate must end at whitespace, sentence punctuation, or the end of
// the output; failing that, anything with a plausible token length is
// accepted. Output is ANSI-stripped first.
func ExtractToken(output string) (string, bool) {
	clean := StripANSI(output)

	for _, loc := range tokenRe.FindAllStringIndex(clean, -1) {
		if boundedAt(clean, loc[1]) {
			return clean[loc[0]:loc[1]], true
		}
	}

	// Fallback: length heuristic for tokens embedded in other text.
	for _, m := range tokenRe.FindAllString(clean, -1) {
		if plausibleTokenLength(m) {
			return m, true
		}
	}
	return "", false
}

// plausibleTokenLength checks the suffix length after the issued prefix.
// Real tokens carry 90 to 110 characters past the prefix.
func plausibleTokenLength(token string) bool {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(token, prefix) {
			n := len(token) - len(prefix)
			return n >= 90 && n <= 110
		}
	}
	return false
}

// boundedAt reports whether position end in s is a clean token boundary.
func boundedAt(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	switch s[end] {
	case ' ', '\t', '\n', '\r', '.', ',', '!':
		return true
	}
	return false
}
