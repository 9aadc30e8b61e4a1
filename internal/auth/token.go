// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"claude-docker/internal/config"
	"claude-docker/internal/issue"
)

// TokenEnv is the environment variable claude reads its OAuth token from,
// both on the host and inside the container.
const TokenEnv = "CLAUDE_CODE_OAUTH_TOKEN"

// Token prefixes issued for long-lived OAuth tokens.
var tokenPrefixes = []string{"sk-ant-", "sk-at-"}

// Source identifies where a credential came from.
type Source int

const (
	SourceNone Source = iota
	// SourceEnv: token taken from the environment.
	SourceEnv
	// SourceTokenFile: token read from ~/.claude-docker/.oauth-token.
	SourceTokenFile
	// SourceCredentials: no token, but the host credentials file exists
	// and will be mounted read-only into the container.
	SourceCredentials
)

// ValidateToken checks the token prefix.
func ValidateToken(token string) error {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(token, prefix) {
			return nil
		}
	}
	return errors.New("token must start with 'sk-ant-' or 'sk-at-'")
}

// SaveToken validates and stores the token (0600). Returns the token file
// path for reporting.
func SaveToken(token string) (string, error) {
	if err := ValidateToken(token); err != nil {
		return "", err
	}
	if err := config.EnsureDir(); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := config.TokenFile()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write token file: %w", err)
	}
	return path, nil
}

// LoadToken reads the stored token. ok is false when no token file exists.
func LoadToken() (token string, ok bool, err error) {
	path, err := config.TokenFile()
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// Resolve finds a usable credential: environment token, stored token, then
// the host credentials file. token is empty for SourceCredentials since
// the credentials are mounted rather than passed through the environment.
func Resolve() (token string, source Source, err error) {
	if t := os.Getenv(TokenEnv); t != "" {
		return t, SourceEnv, nil
	}

	t, ok, err := LoadToken()
	if err != nil {
		return "", SourceNone, err
	}
	if ok && t != "" {
		return t, SourceTokenFile, nil
	}

	credsPath, err := config.CredentialsFile()
	if err != nil {
		return "", SourceNone, err
	}
	if _, err := os.Stat(credsPath); err == nil {
		return "", SourceCredentials, nil
	}

	return "", SourceNone, issue.NewErrorContext().
		WithOperation("resolve authentication").
		WithSuggestion("Run 'claude-docker setup' to generate and store a token").
		WithSuggestion(fmt.Sprintf("Or set the %s environment variable manually", TokenEnv)).
		Wrap(errors.New("no Claude Code authentication found")).
		BuildError()
}
