// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"claude-docker/internal/config"
	"claude-docker/internal/issue"
)

// ErrNotFound is returned by Resolve for an unknown agent name.
var ErrNotFound = errors.New("agent not found")

// Config is a fully resolved agent: the workspace is tilde-expanded and
// defaults are applied. The stored file is never mutated by resolution.
type Config struct {
	Name      string
	Workspace string
	Model     string
	Env       map[string]string
	Init      []string
	// Prompt overrides the default agent prompt when set.
	Prompt string
	// PostRun commands execute inside the container after the agent
	// prompt completes.
	PostRun []string
	// Triggers are schedule hints shown by `agent list`. Nothing in
	// claude-docker acts on them.
	Triggers []string
}

// Summary is the listing view of one entry, shown by `agent list`.
// Workspace is reported as stored, without tilde expansion.
type Summary struct {
	Name      string
	Workspace string
	Model     string
	EnvCount  int
	InitCount int
	Triggers  []string
}

// blockEntry is the canonical on-disk shape of an agent entry.
type blockEntry struct {
	Workspace string            `yaml:"workspace"`
	Model     string            `yaml:"model"`
	Env       map[string]string `yaml:"env"`
	Init      []string          `yaml:"init"`
	Prompt    string            `yaml:"prompt"`
	PostRun   []string          `yaml:"post_run"`
	Triggers  []string          `yaml:"triggers"`
}

// File is a parsed agents.yaml. It keeps the underlying YAML nodes so
// block entries round-trip with their unknown keys intact.
type File struct {
	path string
	root *yaml.Node // mapping node, nil when the file is empty or absent
}

// Load reads the agents file from the config directory. A missing file is
// not an error; the returned File simply has no entries. String-shorthand
// entries are rewritten to the block shape and the file is persisted
// atomically before returning.
func Load() (*File, error) {
	path, err := config.AgentsFile()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{path: path}, nil
		}
		return nil, fmt.Errorf("failed to read agents file: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load agents file").
			WithResource(path).
			WithSuggestion("Check the file for YAML syntax errors").
			Wrap(err).
			BuildError()
	}
	f.path = path

	if f.migrate() {
		if err := f.save(); err != nil {
			return nil, fmt.Errorf("failed to rewrite agents file: %w", err)
		}
	}
	return f, nil
}

// Parse parses agents.yaml content without touching the filesystem.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &File{}, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return &File{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("agents file must be a mapping of name to config, got %s", root.Tag)
	}
	return &File{root: root}, nil
}

// Names returns agent names in file order.
func (f *File) Names() []string {
	if f.root == nil {
		return nil
	}
	names := make([]string, 0, len(f.root.Content)/2)
	for i := 0; i+1 < len(f.root.Content); i += 2 {
		names = append(names, f.root.Content[i].Value)
	}
	return names
}

// Len reports the number of entries.
func (f *File) Len() int {
	if f.root == nil {
		return 0
	}
	return len(f.root.Content) / 2
}

// entry returns the value node for name, or nil.
func (f *File) entry(name string) *yaml.Node {
	if f.root == nil {
		return nil
	}
	for i := 0; i+1 < len(f.root.Content); i += 2 {
		if f.root.Content[i].Value == name {
			return f.root.Content[i+1]
		}
	}
	return nil
}

// Resolve returns the configuration for name with the workspace
// tilde-expanded. An entry without a workspace is an error: every run
// needs a directory to mount.
func (f *File) Resolve(name string) (*Config, error) {
	node := f.entry(name)
	if node == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	cfg := &Config{Name: name}
	switch node.Kind {
	case yaml.ScalarNode:
		cfg.Workspace = node.Value
	case yaml.MappingNode:
		var block blockEntry
		if err := node.Decode(&block); err != nil {
			return nil, fmt.Errorf("agent %q: %w", name, err)
		}
		cfg.Workspace = block.Workspace
		cfg.Model = block.Model
		cfg.Env = block.Env
		cfg.Init = block.Init
		cfg.Prompt = block.Prompt
		cfg.PostRun = block.PostRun
		cfg.Triggers = block.Triggers
	default:
		return nil, fmt.Errorf("agent %q: unsupported entry type %s", name, node.Tag)
	}

	if cfg.Workspace == "" {
		return nil, issue.NewErrorContext().
			WithOperation("resolve agent").
			WithResource(name).
			WithSuggestion(fmt.Sprintf("Add a workspace to the %q entry in agents.yaml", name)).
			Wrap(errors.New("no workspace configured")).
			BuildError()
	}

	workspace, err := ExpandTilde(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	cfg.Workspace = workspace
	return cfg, nil
}

// Summaries returns the listing view of all entries in file order.
func (f *File) Summaries() []Summary {
	names := f.Names()
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		node := f.entry(name)
		s := Summary{Name: name}
		switch node.Kind {
		case yaml.ScalarNode:
			s.Workspace = node.Value
		case yaml.MappingNode:
			var block blockEntry
			if err := node.Decode(&block); err == nil {
				s.Workspace = block.Workspace
				s.Model = block.Model
				s.EnvCount = len(block.Env)
				s.InitCount = len(block.Init)
				s.Triggers = block.Triggers
			}
		}
		out = append(out, s)
	}
	return out
}

// migrate rewrites string-shorthand entries to the block shape in place.
// It reports whether anything changed; block entries are left untouched so
// their unknown keys survive.
func (f *File) migrate() bool {
	if f.root == nil {
		return false
	}
	changed := false
	for i := 0; i+1 < len(f.root.Content); i += 2 {
		val := f.root.Content[i+1]
		if val.Kind != yaml.ScalarNode || val.Tag != "!!str" {
			continue
		}
		f.root.Content[i+1] = &yaml.Node{
			Kind: yaml.MappingNode,
			Tag:  "!!map",
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: "workspace"},
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: val.Value},
			},
		}
		changed = true
	}
	return changed
}

// save writes the file atomically: temp file in the same directory, then
// rename over the original.
func (f *File) save() error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".agents-*.yaml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Marshal renders the file content.
func (f *File) Marshal() ([]byte, error) {
	if f.root == nil {
		return []byte{}, nil
	}
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(f.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// ExpandTilde expands a leading ~ or ~/ to the user home directory.
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := config.HomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
