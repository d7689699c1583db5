package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/exec"
	"github.com/rileyhilliard/cq/internal/template"
	"github.com/rileyhilliard/cq/internal/ui"
)

var execFlags RunFlags

var execCmd = &cobra.Command{
	Use:   "exec [flags] -- <command>",
	Short: "Expand and run a single command line",
	Long: `Expand tokens in one command line and run it through the configured shell.
The exit status of cq is the exit status of the command.

Examples:
  cq exec -- meter-tool --port {COM1} --user {Q:username}
  cq exec --preset bench-a -- "ping {COM1}"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execCommand(cmd, args, &execFlags)
	},
}

func init() {
	AddRunFlags(execCmd, &execFlags)
	rootCmd.AddCommand(execCmd)
}

func execCommand(cmd *cobra.Command, args []string, flags *RunFlags) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	r, err := a.resolve(&flags.BindingFlags)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if flags.Prompt {
		if err := a.promptMissing(text, r.bindings); err != nil {
			return err
		}
	}

	// Machine mode and multi-line input go through the queue path so the
	// result has the same shape as 'cq run'.
	expander := a.cfg.Expander()
	if machineMode || strings.Contains(text, "\n") {
		return a.runItems(cmd, "exec", expander.BuildQueue(text, r.bindings), flags, r)
	}

	timeout, err := ParseTimeout(flags.Timeout, a.cfg.Run.Timeout)
	if err != nil {
		return err
	}
	ctx, cancel := runContext(cmd.Context(), timeout)
	defer cancel()

	command := expander.Expand(text, r.bindings)
	renderer := ui.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), ui.RenderOptions{Timestamps: a.cfg.Output.Timestamps})
	detailed := boolFlag(cmd, "detailed", flags.Detailed, a.cfg.Run.ShowDetailed)
	if detailed {
		masked := expander.Expand(text, expander.Masked(r.bindings, template.DefaultMask))
		renderer.Emit(exec.Event{Kind: exec.Marker, Text: "> " + masked})
	}

	code, err := a.runner().RunOne(ctx, command, r.workDir, renderer)
	switch {
	case errors.IsCode(err, errors.ErrCancelled):
		fmt.Fprintln(cmd.OutOrStdout(), ui.WarningStyle().Render(ui.SymbolSkipped+" Cancelled"))
		return &ExitError{Code: exitCancelled}
	case err != nil:
		return err
	}

	if detailed {
		renderer.Emit(exec.Event{Kind: exec.Marker, Text: fmt.Sprintf("[exit %d]", code), ExitCode: code})
	}
	if code != 0 {
		if hint := exec.MissingCommandHint(command, "", code); hint != "" {
			renderer.Emit(exec.Event{Kind: exec.Status, Text: hint})
		}
		return &ExitError{Code: code}
	}
	return nil
}
