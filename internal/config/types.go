package config

import (
	"time"

	"github.com/rileyhilliard/cq/internal/template"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Color modes for output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the complete .cq.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Shell is the interpreter argv prefix, e.g. "bash -c". Empty means the
	// platform default ($SHELL -c, /bin/sh -c, or cmd.exe /C).
	Shell string `yaml:"shell" mapstructure:"shell"`

	// WorkingDir is where commands run. Relative paths resolve against the
	// directory holding the config file. Empty means the current directory.
	WorkingDir string `yaml:"working_dir" mapstructure:"working_dir"`

	// StoreDir holds templates, presets and sequences.
	StoreDir string `yaml:"store_dir" mapstructure:"store_dir"`

	Tokens   TokensConfig    `yaml:"tokens" mapstructure:"tokens"`
	Run      RunConfig       `yaml:"run" mapstructure:"run"`
	Logs     LogsConfig      `yaml:"logs" mapstructure:"logs"`
	Output   OutputConfig    `yaml:"output" mapstructure:"output"`
	Bindings template.Values `yaml:"bindings" mapstructure:"bindings"`

	// Path is the file this config was read from, "" for defaults.
	Path string `yaml:"-" mapstructure:"-"`
}

// TokensConfig controls token resolution.
type TokensConfig struct {
	// FieldAliases picks the FIELDn mapping: "credentials" or "ports".
	FieldAliases string `yaml:"field_aliases" mapstructure:"field_aliases"`
}

// RunConfig holds queue execution defaults.
type RunConfig struct {
	StopOnError  bool          `yaml:"stop_on_error" mapstructure:"stop_on_error"`
	ShowDetailed bool          `yaml:"show_detailed" mapstructure:"show_detailed"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogsConfig controls the daily session log.
type LogsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir      string `yaml:"dir" mapstructure:"dir"`
	KeepDays int    `yaml:"keep_days" mapstructure:"keep_days"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`

	// Timestamps prefixes each rendered line with the time it arrived.
	Timestamps bool `yaml:"timestamps" mapstructure:"timestamps"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		StoreDir: "~/.cq",
		Tokens: TokensConfig{
			FieldAliases: string(template.ProfileCredentials),
		},
		Run: RunConfig{
			StopOnError: true,
		},
		Logs: LogsConfig{
			Enabled:  true,
			Dir:      "~/.cq/logs",
			KeepDays: 30,
		},
		Output: OutputConfig{
			Color: ColorAuto,
		},
	}
}

// AliasProfile returns the configured FIELDn profile. Call Validate first;
// an unknown value falls back to the credentials profile.
func (c *Config) AliasProfile() template.AliasProfile {
	p, err := template.ParseAliasProfile(c.Tokens.FieldAliases)
	if err != nil {
		return template.ProfileCredentials
	}
	return p
}

// Expander returns a token expander for the configured alias profile.
func (c *Config) Expander() template.Expander {
	return template.NewExpander(c.AliasProfile())
}
