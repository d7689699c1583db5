package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/cq/internal/config"
	"github.com/rileyhilliard/cq/internal/exec"
)

// ConfigFileCheck reports which config file is in use. Running on
// defaults is fine but worth knowing.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
	// InitDir is where Fix writes a default .cq.yaml.
	InitDir string
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", firstLine(err)),
			Suggestion: "Check the --config path or run 'cq init' to create a config",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file; using defaults",
			Suggestion: "Run 'cq init' (or 'cq doctor --fix') to create .cq.yaml",
			Fixable:    c.InitDir != "",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

func (c *ConfigFileCheck) Fix() error {
	if c.InitDir == "" {
		return nil
	}
	return config.WriteDefault(filepath.Join(c.InitDir, config.ConfigFileName), false)
}

// ConfigSchemaCheck loads and validates the effective config.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run() CheckResult {
	cfg, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %s", firstLine(err)),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Schema error: %s", firstLine(err)),
			Suggestion: "Fix the value with 'cq config set <key> <value>'",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Schema valid (field aliases: %s)", cfg.AliasProfile()),
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// ShellCheck verifies the interpreter commands run through exists.
type ShellCheck struct {
	Shell string // config value; empty means the platform default
}

func (c *ShellCheck) Name() string     { return "shell" }
func (c *ShellCheck) Category() string { return CategoryConfig }

func (c *ShellCheck) Run() CheckResult {
	argv := exec.NewRunner(exec.WithShell(c.Shell)).Shell()
	result := exec.LocateProgram(argv[0], "")

	if !result.Found() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Shell not found: %s", argv[0]),
			Suggestion: "Set 'shell' in .cq.yaml to an installed interpreter, e.g. \"bash -c\"",
		}
	}
	if result.Source == exec.FoundInCommon {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Shell %s is outside PATH", result.Path),
			Suggestion: result.Suggestion(),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Shell: %s", strings.Join(argv, " ")),
	}
}

func (c *ShellCheck) Fix() error {
	return nil
}

// WorkingDirCheck verifies the configured working_dir exists.
type WorkingDirCheck struct {
	Dir string
}

func (c *WorkingDirCheck) Name() string     { return "working_dir" }
func (c *WorkingDirCheck) Category() string { return CategoryConfig }

func (c *WorkingDirCheck) Run() CheckResult {
	if c.Dir == "" {
		wd, _ := os.Getwd()
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("Working directory: current (%s)", wd),
		}
	}
	if err := config.ValidateWorkingDir(c.Dir); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    firstLine(err),
			Suggestion: "Set 'working_dir' to an existing directory, or pass --wd",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Working directory: %s", c.Dir),
	}
}

func (c *WorkingDirCheck) Fix() error {
	return nil
}

// NewConfigChecks creates all config-related checks. cfg may be nil when
// the config failed to load; the schema check reports why.
func NewConfigChecks(configPath, initDir string, cfg *config.Config) []Check {
	checks := []Check{
		&ConfigFileCheck{ConfigPath: configPath, InitDir: initDir},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
	if cfg != nil {
		checks = append(checks,
			&ShellCheck{Shell: cfg.Shell},
			&WorkingDirCheck{Dir: cfg.WorkingDir},
		)
	}
	return checks
}

// firstLine trims structured errors down to their headline.
func firstLine(err error) string {
	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "✗ ")
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
