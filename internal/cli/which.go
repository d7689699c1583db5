package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/exec"
	"github.com/rileyhilliard/cq/internal/ui"
)

var whichWorkDir string

// whichCmd shows where a program named in a template would be found.
var whichCmd = &cobra.Command{
	Use:   "which <program>",
	Short: "Show where a program would be found",
	Long: `Look for a program the way a queued command would: the working
directory first, then PATH, then common install locations that are often
missing from PATH.

Examples:
  cq which flashtool
  cq which ./bin/flash.sh --wd ~/firmware`,
	Args: cobra.ExactArgs(1),
	RunE: runWhich,
}

func init() {
	rootCmd.AddCommand(whichCmd)
	whichCmd.Flags().StringVar(&whichWorkDir, "wd", "", "working directory to search (default: the configured one)")
}

func runWhich(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	r, err := a.resolve(&BindingFlags{WorkDir: whichWorkDir})
	if err != nil {
		return err
	}

	result := exec.LocateProgram(args[0], r.workDir)
	out := cmd.OutOrStdout()

	if !result.Found() {
		return errors.New(errors.ErrNotFound,
			fmt.Sprintf("'%s' not found", args[0]),
			result.Suggestion())
	}

	if machineMode {
		return WriteJSONSuccess(out, map[string]any{
			"program":      result.Program,
			"path":         result.Path,
			"source":       result.Source,
			"common_paths": result.CommonPaths,
		})
	}

	fmt.Fprintf(out, "%s %s %s\n",
		ui.SuccessStyle().Render(ui.SymbolSuccess),
		result.Path,
		ui.MutedStyle().Render("("+result.Source+")"))
	if hint := result.Suggestion(); hint != "" {
		fmt.Fprintln(out, ui.WarningStyle().Render(hint))
	}
	for _, p := range result.CommonPaths {
		if p != result.Path {
			fmt.Fprintln(out, ui.MutedStyle().Render("  also: "+p))
		}
	}
	return nil
}
