package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/cq/internal/config"
	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/template"
)

var configSetGlobal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Long: `Print the config cq would use here, after defaults, the config file and
CQ_* environment variables are merged. The password is never printed.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Set a dotted key in the config file cq would load from here. Comments and
layout of the file are kept.

Settable keys:
  ` + strings.Join(config.SettableKeys, "\n  ") + `

Examples:
  cq config set bindings.comport1 COM3
  cq config set run.stop_on_error false
  cq config set --global tokens.field_aliases ports`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(configFlag)
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": path})
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No config file found; using defaults. Run 'cq init' to create one.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd)
	configSetCmd.Flags().BoolVar(&configSetGlobal, "global", false, "edit ~/.config/cq/config.yaml")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(configFlag)
	if err != nil {
		return err
	}
	cfg := *a.cfg
	if cfg.Bindings.Password != "" {
		cfg.Bindings.Password = template.DefaultMask
	}

	if machineMode {
		return WriteJSONSuccess(cmd.OutOrStdout(), map[string]any{
			"path":   cfg.Path,
			"config": cfg,
		})
	}

	out := cmd.OutOrStdout()
	if cfg.Path != "" {
		fmt.Fprintf(out, "# %s\n", cfg.Path)
	} else {
		fmt.Fprintln(out, "# defaults (no config file)")
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't render config", "")
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if a.cfg.Bindings.Password != "" {
		fmt.Fprintln(out, "# bindings.password is set from the environment")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if key == "bindings.password" {
		return errors.New(errors.ErrConfig,
			"The password can't be stored in a config file",
			"Set CQ_BINDINGS_PASSWORD or run with --prompt.")
	}

	path, err := configSetPath()
	if err != nil {
		return err
	}
	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't read "+path, "Check your permissions.")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't set %s in %s", key, path),
			"Check the file is valid YAML.")
	}

	// Values that leave the file unloadable are rolled back.
	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if rerr := os.WriteFile(path, original, 0644); rerr != nil {
			return errors.WrapWithCode(rerr, errors.ErrConfig,
				"Can't restore "+path+" after a rejected value",
				fmt.Sprintf("Fix %s by hand.", key))
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Rejected %s = %s; %s is unchanged", key, value, path),
			"Run 'cq config set --help' for the accepted keys.")
	}

	printDone(cmd, fmt.Sprintf("Set %s = %s in %s", key, value, path))
	return nil
}

// configSetPath picks the file 'config set' edits: --global, then the file
// cq would load, then a fresh .cq.yaml here.
func configSetPath() (string, error) {
	if configSetGlobal {
		path, err := config.GlobalConfigPath()
		if err != nil {
			return "", err
		}
		return path, ensureConfigFile(path)
	}
	path, err := config.Find(configFlag)
	if err != nil {
		return "", err
	}
	if path != "" {
		return path, nil
	}
	path, err = initPath(false)
	if err != nil {
		return "", err
	}
	return path, ensureConfigFile(path)
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return config.WriteDefault(path, false)
}
