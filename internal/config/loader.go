package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".cq.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/cq"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides: CQ_BINDINGS_PASSWORD, CQ_LOGS_DIR.
	EnvPrefix = "CQ"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'cq init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .cq.yaml in current directory
// 3. .cq.yaml in parent directories (stops at git root or home)
// 4. ~/.config/cq/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	if !isGitRoot(cwd) {
		dir := cwd
		for {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			if home != "" && parent == home {
				// Don't go above home directory
				break
			}
			dir = parent

			configPath := filepath.Join(dir, ConfigFileName)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}

			if isGitRoot(dir) {
				break
			}
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path. With no config file it
// returns defaults with environment overrides applied.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return parseConfig(newViper(), "")
	}

	return Load(path)
}

// GlobalConfigPath returns ~/.config/cq/config.yaml.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Set HOME or pass --config")
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}

// newViper returns a viper instance with defaults and CQ_ env overrides.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal, even when the file leaves it out.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("shell", d.Shell)
	v.SetDefault("working_dir", d.WorkingDir)
	v.SetDefault("store_dir", d.StoreDir)
	v.SetDefault("tokens.field_aliases", d.Tokens.FieldAliases)
	v.SetDefault("run.stop_on_error", d.Run.StopOnError)
	v.SetDefault("run.show_detailed", d.Run.ShowDetailed)
	v.SetDefault("run.timeout", "0s")
	v.SetDefault("logs.enabled", d.Logs.Enabled)
	v.SetDefault("logs.dir", d.Logs.Dir)
	v.SetDefault("logs.keep_days", d.Logs.KeepDays)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.timestamps", d.Output.Timestamps)
	for _, key := range bindingKeys {
		v.SetDefault("bindings."+key, "")
	}
}

var bindingKeys = []string{"comport1", "comport2", "username", "password", "opco", "program", "wd"}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your config"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}
	cfg.Path = path

	cfg.StoreDir = ExpandPath(cfg.StoreDir)
	cfg.Logs.Dir = ExpandPath(cfg.Logs.Dir)
	if cfg.WorkingDir != "" {
		wd := ExpandPath(cfg.WorkingDir)
		if !filepath.IsAbs(wd) {
			wd = filepath.Join(configDir(path), wd)
		}
		cfg.WorkingDir = wd
	}

	return cfg, nil
}

// configDir returns the directory containing the config file.
func configDir(configPath string) string {
	if configPath == "" {
		cwd, _ := os.Getwd()
		return cwd
	}
	return filepath.Dir(configPath)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	gitPath := filepath.Join(dir, ".git")
	_, err := os.Stat(gitPath)
	return err == nil
}
