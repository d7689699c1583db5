package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/template"
)

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for cq. Template, preset and
sequence names complete from the store.

Examples:
  # Bash
  cq completion bash > /etc/bash_completion.d/cq

  # Zsh
  cq completion zsh > "${fpath[1]}/_cq"

  # Fish
  cq completion fish > ~/.config/fish/completions/cq.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	for _, c := range []*cobra.Command{
		runCmd, expandCmd, tokensCmd,
		templateShowCmd, templateRmCmd, templateRenameCmd,
	} {
		c.ValidArgsFunction = firstArgCompletion(completeTemplateNames)
	}
	for _, c := range []*cobra.Command{presetShowCmd, presetRmCmd} {
		c.ValidArgsFunction = firstArgCompletion(completePresetNames)
	}
	for _, c := range []*cobra.Command{sequenceShowCmd, sequenceRmCmd, sequenceRunCmd} {
		c.ValidArgsFunction = firstArgCompletion(completeSequenceNames)
	}
	// Every argument after the sequence name is a template.
	sequenceSaveCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return completeTemplateNames(cmd, args, toComplete)
	}
}

type completionFunc func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)

// firstArgCompletion completes only the first positional argument.
func firstArgCompletion(fn completionFunc) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return fn(cmd, args, toComplete)
	}
}

func completeTemplateNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeNames(toComplete, func(a *app) ([]string, error) { return a.store.Templates.Names() })
}

func completePresetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeNames(toComplete, func(a *app) ([]string, error) { return a.store.Presets.Names() })
}

func completeSequenceNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeNames(toComplete, func(a *app) ([]string, error) { return a.store.Sequences.Names() })
}

func completeSnippetKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := strings.ToLower(toComplete)
	var out []string
	for _, s := range template.Snippets {
		if strings.HasPrefix(s.Key, prefix) {
			out = append(out, s.Key+"\t"+s.Description)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeNames filters stored names by a case-insensitive prefix. Errors
// produce no suggestions rather than noise in the shell.
func completeNames(toComplete string, list func(*app) ([]string, error)) ([]string, cobra.ShellCompDirective) {
	a, err := newApp(configFlag)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names, err := list(a)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	prefix := strings.ToLower(toComplete)
	var out []string
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), prefix) {
			out = append(out, n)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
