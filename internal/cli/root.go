package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/logger"
	"github.com/rileyhilliard/cq/internal/ui"
)

// Global flags
var (
	configFlag  string
	noColorFlag bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "cq",
	Short: "Command queue runner for token templates",
	Long: `cq expands command templates containing tokens like {COM1} or {Q:username}
and runs the resulting commands in order, streaming their output.

Templates, presets and sequences live in the store directory (~/.cq by default).
Settings come from .cq.yaml, ~/.config/cq/config.yaml and CQ_* environment
variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verboseFlag)
		if noColorFlag {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default: .cq.yaml, then ~/.config/cq/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "print machine-readable JSON")
}

// ExitError carries a process exit status out of a command without
// printing anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the CLI and exits the process.
func Execute() {
	os.Exit(executeWith(os.Args[1:], os.Stdout, os.Stderr))
}

// executeWith runs rootCmd with args and returns the exit status.
func executeWith(args []string, out, errOut io.Writer) int {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(os.Stdin)

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}

	if machineMode {
		_ = WriteJSONFromError(out, err)
		return 1
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" && templateExists(name) {
			err = errors.New(errors.ErrNotFound,
				fmt.Sprintf("Unknown command '%s'", name),
				fmt.Sprintf("There's a template with that name. Did you mean 'cq run %s'?", name))
		}
	}
	fmt.Fprint(errOut, ui.ErrorStyle().Render(strings.TrimRight(err.Error(), "\n")))
	fmt.Fprintln(errOut)
	return 1
}

// resetFlags restores every flag to its default. Flag values live in
// package variables, so repeated executions in one process would otherwise
// see the previous run's values.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// isUnknownCommandError checks if the error is from Cobra's unknown command/flag handling.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unknown command") || strings.Contains(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of a Cobra
// `unknown command "foo" for "cq"` error.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// templateExists reports whether the configured store has a template named
// name. Config problems count as no.
func templateExists(name string) bool {
	a, err := newApp(configFlag)
	if err != nil {
		return false
	}
	return a.store.Templates.Exists(name)
}
