package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/template"
	"github.com/rileyhilliard/cq/internal/ui"
	"github.com/rileyhilliard/cq/internal/util"
)

var (
	expandFlags  BindingFlags
	expandReveal bool
	expandQueue  bool
	tokensFlags  BindingFlags
)

var expandCmd = &cobra.Command{
	Use:   "expand <template>",
	Short: "Preview a template with its tokens filled in",
	Long: `Print a template with token values substituted, keeping its line structure.
The password is masked unless --reveal is given. With --queue, print the
commands that 'cq run' would execute instead.

Examples:
  cq expand flash --set COM1=COM3
  cq expand flash --preset bench-a --queue`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return expandCommand(cmd, args[0])
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <template>",
	Short: "List the tokens a template uses and their values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tokensCommand(cmd, args[0])
	},
}

func init() {
	AddBindingFlags(expandCmd, &expandFlags)
	expandCmd.Flags().BoolVar(&expandReveal, "reveal", false, "show the password instead of masking it")
	expandCmd.Flags().BoolVar(&expandQueue, "queue", false, "list the queue items instead of the text")
	AddBindingFlags(tokensCmd, &tokensFlags)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(tokensCmd)
}

type queueItemView struct {
	Line        int    `json:"line"`
	Description string `json:"description,omitempty"`
	Command     string `json:"command"`
}

func expandCommand(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	r, err := a.resolve(&expandFlags)
	if err != nil {
		return err
	}
	t, err := a.store.Templates.Get(name)
	if err != nil {
		return err
	}
	if expandFlags.Prompt {
		if err := a.promptMissing(t.Text, r.bindings); err != nil {
			return err
		}
	}

	expander := a.cfg.Expander()
	b := r.bindings
	if !expandReveal {
		b = expander.Masked(b, template.DefaultMask)
	}
	out := cmd.OutOrStdout()

	if expandQueue {
		items := expander.BuildQueue(t.Text, b)
		views := make([]queueItemView, len(items))
		for i, it := range items {
			views[i] = queueItemView{Line: it.Line, Description: it.Description, Command: it.Command}
		}
		if machineMode {
			return WriteJSONSuccess(out, views)
		}
		rows := make([][]string, len(views))
		for i, v := range views {
			rows[i] = []string{strconv.Itoa(v.Line), v.Description, v.Command}
		}
		fmt.Fprint(out, ui.RenderTable([]ui.TableColumn{{Title: "LINE"}, {Title: "DESCRIPTION"}, {Title: "COMMAND"}}, rows))
		return nil
	}

	text := expander.ExpandText(t.Text, b)
	if machineMode {
		return WriteJSONSuccess(out, map[string]string{"name": t.Name, "text": text})
	}
	fmt.Fprintln(out, text)
	if missing := emptyTokens(expander, t.Text, r.bindings); len(missing) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.WarningStyle().Render(fmt.Sprintf("%s empty: %s", ui.SymbolWarning, util.JoinOrNone(missing))))
	}
	return nil
}

type tokenView struct {
	Token string `json:"token"`
	Bound bool   `json:"bound"`
	Value string `json:"value"`
}

func tokensCommand(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	r, err := a.resolve(&tokensFlags)
	if err != nil {
		return err
	}
	t, err := a.store.Templates.Get(name)
	if err != nil {
		return err
	}

	expander := a.cfg.Expander()
	masked := expander.Masked(r.bindings, template.DefaultMask)

	var views []tokenView
	for _, tok := range expander.ListTokensUsed(t.Text) {
		v, ok := masked[tok]
		views = append(views, tokenView{Token: tok, Bound: ok && v != "", Value: v})
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, views)
	}
	if len(views) == 0 {
		fmt.Fprintf(out, "Template '%s' uses no tokens.\n", t.Name)
		return nil
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		state := ui.SuccessStyle().Render(ui.SymbolSuccess)
		if !v.Bound {
			state = ui.WarningStyle().Render(ui.SymbolPending)
		}
		rows[i] = []string{state, v.Token, v.Value}
	}
	fmt.Fprint(out, ui.RenderTable([]ui.TableColumn{{Title: " "}, {Title: "TOKEN"}, {Title: "VALUE"}}, rows))
	return nil
}
