// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"claude-docker/internal/config"
	"claude-docker/internal/container"
	"claude-docker/internal/image"
)

const (
	marketplaceName = "michaelansel"
	marketplaceRepo = "michaelansel/claude-code-plugins"
	pluginRef       = "c3po@michaelansel"
)

// EnrollScript composes the bash script run inside the container to
// install and enroll c3po. url, token, and machine are shell-quoted, so
// hostile values cannot break out of the script.
func EnrollScript(url, token, machine string) (string, error) {
	quotedURL, err := syntax.Quote(url, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("failed to quote url: %w", err)
	}
	quotedToken, err := syntax.Quote(token, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("failed to quote token: %w", err)
	}
	quotedMachine, err := syntax.Quote(machine, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("failed to quote machine name: %w", err)
	}
	quotedPattern, err := syntax.Quote(machine+"/*", syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("failed to quote pattern: %w", err)
	}

	lines := []string{
		"set -euo pipefail",
		fmt.Sprintf("echo 'Adding/updating %s marketplace...'", marketplaceName),
		fmt.Sprintf("claude plugin marketplace update %s 2>/dev/null || claude plugin marketplace add %s", marketplaceName, marketplaceRepo),
		"echo 'Installing/updating c3po plugin...'",
		fmt.Sprintf("claude plugin update %s 2>/dev/null || claude plugin install %s", pluginRef, pluginRef),
		"echo 'Enrolling with coordinator...'",
		`SETUP_PY=$(find ~/.claude/plugins -path '*/c3po*/setup.py' -print -quit)`,
		`if [[ -z "$SETUP_PY" ]]; then`,
		"    echo 'Error: Could not find c3po setup.py' >&2",
		"    exit 1",
		"fi",
		fmt.Sprintf(`python3 "$SETUP_PY" --enroll %s %s --machine %s --pattern %s`, quotedURL, quotedToken, quotedMachine, quotedPattern),
		"echo 'Done! c3po plugin installed and enrolled.'",
		credentialsStamp(machine),
	}
	return strings.Join(lines, "\n"), nil
}

// credentialsStamp records the machine name in the plugin credentials
// file. The name is embedded as a JSON string literal, which Python reads
// unchanged.
func credentialsStamp(machine string) string {
	literal, _ := json.Marshal(machine)
	return fmt.Sprintf(`python3 -c "
import json, pathlib
p = pathlib.Path.home() / '.claude' / 'c3po-credentials.json'
d = json.loads(p.read_text())
d['machine_name'] = %s
p.write_text(json.dumps(d, indent=2) + '\n')
"`, shellEscapeInDoubleQuotes(string(literal)))
}

// shellEscapeInDoubleQuotes protects a fragment embedded in the
// double-quoted python -c argument.
func shellEscapeInDoubleQuotes(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return replacer.Replace(s)
}

// Setup runs the enrollment script in the container with the standard
// config mounts. The session is interactive so plugin installs can
// prompt.
func Setup(ctx context.Context, eng container.Engine, url, token string, stdin io.Reader, stdout, stderr io.Writer) error {
	machine, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to resolve hostname: %w", err)
	}
	script, err := EnrollScript(url, token, machine)
	if err != nil {
		return err
	}

	configDir, err := config.Dir()
	if err != nil {
		return err
	}
	settingsPath, err := config.SettingsFile()
	if err != nil {
		return err
	}
	userConfigPath, err := config.UserConfigFile()
	if err != nil {
		return err
	}

	res, err := eng.Run(ctx, container.RunOptions{
		Image:      image.Name,
		Entrypoint: "bash",
		Command:    []string{"-c", script},
		Volumes: []string{
			fmt.Sprintf("%s:/home/node/.claude", configDir),
			fmt.Sprintf("%s:/home/node/claude-docker.yaml", settingsPath),
			fmt.Sprintf("%s:/home/node/.claude.json", userConfigPath),
		},
		Remove:      true,
		Interactive: true,
		TTY:         true,
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
	})
	if err != nil {
		return err
	}
	if res.Error != nil {
		return res.Error
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("c3po setup exited with code %d", res.ExitCode)
	}
	return nil
}
