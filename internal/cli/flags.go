package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
)

// BindingFlags select where token values come from.
type BindingFlags struct {
	Preset  string
	Set     []string
	WorkDir string
	Prompt  bool
}

// RunFlags holds the flags shared by run, exec and sequence run.
type RunFlags struct {
	BindingFlags
	StopOnError bool
	Detailed    bool
	Timeout     string
}

// AddBindingFlags registers --preset, --set, --wd and --prompt on a command.
func AddBindingFlags(cmd *cobra.Command, flags *BindingFlags) {
	cmd.Flags().StringVarP(&flags.Preset, "preset", "p", "", "load token values from a saved preset")
	cmd.Flags().StringArrayVarP(&flags.Set, "set", "s", nil, "bind a token, e.g. --set COM1=COM3 (repeatable)")
	cmd.Flags().StringVar(&flags.WorkDir, "wd", "", "working directory for commands (default: config working_dir, then current)")
	cmd.Flags().BoolVar(&flags.Prompt, "prompt", false, "ask for empty tokens the template uses")
	_ = cmd.RegisterFlagCompletionFunc("preset", completePresetNames)
}

// AddRunFlags registers the binding flags plus the queue options.
func AddRunFlags(cmd *cobra.Command, flags *RunFlags) {
	AddBindingFlags(cmd, &flags.BindingFlags)
	cmd.Flags().BoolVar(&flags.StopOnError, "stop-on-error", true, "stop the queue at the first failing command (default from run.stop_on_error)")
	cmd.Flags().BoolVarP(&flags.Detailed, "detailed", "d", false, "show expanded commands and exit codes (default from run.show_detailed)")
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "cancel the run after this long (e.g., 30s, 5m)")
}

// ParseTimeout parses a timeout flag. An empty flag returns fallback.
func ParseTimeout(flag string, fallback time.Duration) (time.Duration, error) {
	if flag == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid timeout", flag),
			"Try something like 30s, 5m, or 500ms.")
	}
	if duration < 0 {
		return 0, errors.New(errors.ErrConfig,
			"Timeout can't be negative",
			"Use 0 to turn the timeout off.")
	}
	return duration, nil
}

// boolFlag returns the flag's value when it was given, otherwise fallback.
func boolFlag(cmd *cobra.Command, name string, value, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}
