package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/cq/internal/errors"
	"gopkg.in/yaml.v3"
)

// SettableKeys lists the dotted keys 'cq config set' accepts.
var SettableKeys = []string{
	"shell",
	"working_dir",
	"store_dir",
	"tokens.field_aliases",
	"run.stop_on_error",
	"run.show_detailed",
	"run.timeout",
	"logs.enabled",
	"logs.dir",
	"logs.keep_days",
	"output.color",
	"output.timestamps",
	"bindings.comport1",
	"bindings.comport2",
	"bindings.username",
	"bindings.opco",
	"bindings.program",
	"bindings.wd",
}

// defaultConfigYAML is written by 'cq init'.
const defaultConfigYAML = `# cq configuration
version: 1

# Interpreter for commands, e.g. "bash -c". Empty uses $SHELL -c or cmd.exe /C.
shell: ""

# Where commands run. Relative paths are resolved against this file.
working_dir: ""

store_dir: ~/.cq

tokens:
  # credentials: FIELD3..6 = username, password, opco, program
  # ports:       FIELD3..6 = comport1, comport2, username, password
  field_aliases: credentials

run:
  stop_on_error: true
  show_detailed: false
  timeout: 0s

logs:
  enabled: true
  dir: ~/.cq/logs
  keep_days: 30

output:
  color: auto
  timestamps: false

# Default token values. The password is never read from or written to this
# file by 'cq config set'; use CQ_BINDINGS_PASSWORD or --prompt.
bindings:
  comport1: ""
  comport2: ""
  username: ""
  opco: ""
  program: ""
  wd: ""
`

// WriteDefault creates a commented default config at path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config file already exists: "+path,
				"Use --force to overwrite it.")
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't create config directory",
			"Check your permissions.")
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't write config file "+path,
			"Check your permissions.")
	}
	return nil
}

// SetValue sets a dotted key in the config file, creating intermediate
// mappings as needed. It preserves the existing YAML structure and comments.
func SetValue(configPath, key, value string) error {
	if !isSettable(key) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' can't be set from the command line", key),
			"Settable keys: "+strings.Join(SettableKeys, ", "))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind == 0 {
		// Empty file.
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child := findMapValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a mapping in %s", part, configPath)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = ""
		existing.Value = value
		existing.Style = 0
		existing.Content = nil
	} else {
		node.Content = append(node.Content, scalar(leaf), &yaml.Node{Kind: yaml.ScalarNode, Value: value})
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isSettable(key string) bool {
	for _, k := range SettableKeys {
		if k == key {
			return true
		}
	}
	return false
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
