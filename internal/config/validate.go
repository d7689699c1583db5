package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/template"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but cq only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade cq to a newer release.")
	}

	if _, err := template.ParseAliasProfile(cfg.Tokens.FieldAliases); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid 'tokens.field_aliases'",
			"Use 'credentials' (FIELD3=username) or 'ports' (FIELD3=comport1).")
	}

	if cfg.Shell != "" {
		if err := validateShellFormat(cfg.Shell); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'shell' setting in your .cq.yaml.")
		}
	}

	if err := validateRun(cfg.Run); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'run' section in your .cq.yaml.")
	}

	if err := validateLogs(cfg.Logs); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'logs' section in your .cq.yaml.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .cq.yaml.")
	}

	if cfg.StoreDir == "" {
		return errors.New(errors.ErrConfig,
			"'store_dir' is empty",
			"Remove the setting to use ~/.cq, or point it at a writable directory.")
	}

	return nil
}

// ValidateWorkingDir checks that dir exists and is a directory. Empty is
// allowed and means the current directory.
func ValidateWorkingDir(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Working directory '%s' isn't accessible", dir),
			"Fix 'working_dir' in .cq.yaml or pass --wd.")
	}
	if !info.IsDir() {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Working directory '%s' is not a directory", dir),
			"Fix 'working_dir' in .cq.yaml or pass --wd.")
	}
	return nil
}

// validateShellFormat accepts a bare binary ("bash") or a binary followed
// by flags ending in the command flag ("bash -l -c", "cmd.exe /C").
func validateShellFormat(shell string) error {
	parts := strings.Fields(shell)
	if len(parts) < 2 {
		return nil
	}

	last := parts[len(parts)-1]
	if !strings.HasPrefix(last, "-") && !strings.HasPrefix(last, "/") {
		return fmt.Errorf("shell should end with a flag like '-c'. Got '%s' - try 'bash -c' or 'cmd.exe /C'", shell)
	}
	return nil
}

func validateRun(r RunConfig) error {
	if r.Timeout < 0 {
		return fmt.Errorf("run.timeout can't be negative (got %s)", r.Timeout)
	}
	return nil
}

func validateLogs(l LogsConfig) error {
	if l.KeepDays < 0 {
		return fmt.Errorf("logs.keep_days can't be negative (got %d) - use 0 to keep logs forever", l.KeepDays)
	}
	if l.Enabled && l.Dir == "" {
		return fmt.Errorf("logs.dir is empty but logging is enabled")
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	switch o.Color {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	default:
		return fmt.Errorf("output.color is '%s' but it needs to be 'auto', 'always' or 'never'", o.Color)
	}
}
