package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/config"
	"github.com/rileyhilliard/cq/internal/errors"
)

var (
	initGlobal bool
	initForce  bool
)

// initCmd writes a commented default config.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default .cq.yaml",
	Long: `Write a commented default config to .cq.yaml in the current directory,
or to ~/.config/cq/config.yaml with --global.

Examples:
  cq init
  cq init --global
  cq init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initPath(initGlobal)
		if err != nil {
			return err
		}
		if err := config.WriteDefault(path, initForce); err != nil {
			return err
		}
		printDone(cmd, "Wrote "+path)
		if !machineMode {
			fmt.Fprintln(cmd.OutOrStdout(), "Edit it by hand or with 'cq config set <key> <value>'.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/cq/config.yaml instead")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func initPath(global bool) (string, error) {
	if global {
		return config.GlobalConfigPath()
	}
	path, err := filepath.Abs(config.ConfigFileName)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't determine current directory",
			"Check your directory permissions.")
	}
	return path, nil
}
