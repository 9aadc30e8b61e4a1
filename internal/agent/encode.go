// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// EncodeCommands packs a command list as base64(JSON array) for transport
// to the container entrypoint in a single environment variable.
func EncodeCommands(cmds []string) (string, error) {
	if cmds == nil {
		cmds = []string{}
	}
	data, err := json.Marshal(cmds)
	if err != nil {
		return "", fmt.Errorf("failed to encode commands: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeCommands reverses EncodeCommands.
func DecodeCommands(encoded string) ([]string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode commands: %w", err)
	}
	var cmds []string
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("failed to decode commands: %w", err)
	}
	return cmds, nil
}

// CheckCommands parses each command as POSIX shell so an unparseable init
// or post_run command fails on the host instead of inside the container.
func CheckCommands(cmds []string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	for i, cmd := range cmds {
		if err := parseCommand(parser, cmd); err != nil {
			return fmt.Errorf("command %d (%q): %w", i+1, cmd, err)
		}
	}
	return nil
}

func parseCommand(parser *syntax.Parser, cmd string) error {
	_, err := parser.Parse(strings.NewReader(cmd), "")
	return err
}
