package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/store"
	"github.com/rileyhilliard/cq/internal/template"
	"github.com/rileyhilliard/cq/internal/ui"
)

var (
	presetSaveSet      []string
	presetSaveTemplate string
	presetSaveWorkDir  string
	presetRmYes        bool
)

var presetCmd = &cobra.Command{
	Use:     "preset",
	Aliases: []string{"presets"},
	Short:   "Manage saved token values",
	Long: `A preset is a named set of token values, optionally with a template and a
working directory. Use it with 'cq run --preset <name>'. The password is never
saved; supply it with CQ_BINDINGS_PASSWORD, --set password=..., or --prompt.`,
}

var presetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List presets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return presetList(cmd)
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset's values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return presetShow(cmd, args[0])
	},
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Create or update a preset",
	Long: `Create a preset, or update an existing one with the given values.

Examples:
  cq preset save bench-a --set COM1=COM3 --set username=tech1 --template flash
  cq preset save bench-a --wd ~/meters/bench-a`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return presetSave(cmd, args[0])
	},
}

var presetRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a preset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		p, err := a.store.Presets.Get(args[0])
		if err != nil {
			return err
		}
		if ok, err := confirmDelete(cmd, "preset", p.Name, presetRmYes); !ok || err != nil {
			return err
		}
		if err := a.store.Presets.Delete(p.Name); err != nil {
			return err
		}
		printDone(cmd, fmt.Sprintf("Deleted preset '%s'", p.Name))
		return nil
	},
}

func init() {
	presetSaveCmd.Flags().StringArrayVarP(&presetSaveSet, "set", "s", nil, "token value, e.g. --set COM1=COM3 (repeatable)")
	presetSaveCmd.Flags().StringVarP(&presetSaveTemplate, "template", "t", "", "template to run with this preset")
	presetSaveCmd.Flags().StringVar(&presetSaveWorkDir, "wd", "", "working directory for runs with this preset")
	presetRmCmd.Flags().BoolVarP(&presetRmYes, "yes", "y", false, "don't ask for confirmation")

	presetCmd.AddCommand(presetListCmd, presetShowCmd, presetSaveCmd, presetRmCmd)
	rootCmd.AddCommand(presetCmd)
}

func presetList(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	all, err := a.store.Presets.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, all)
	}
	if len(all) == 0 {
		fmt.Fprintln(out, "No presets saved.")
		fmt.Fprintln(out, ui.MutedStyle().Render("Create one with 'cq preset save <name> --set COM1=...'."))
		return nil
	}

	rows := make([][]string, len(all))
	for i, p := range all {
		rows[i] = []string{p.Name, p.Template, p.Values.ComPort1, p.Values.Username, p.WorkingDir}
	}
	fmt.Fprint(out, ui.RenderTable([]ui.TableColumn{
		{Title: "NAME"}, {Title: "TEMPLATE"}, {Title: "COM1"}, {Title: "USER"}, {Title: "WORKING DIR"},
	}, rows))
	return nil
}

func presetShow(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	p, err := a.store.Presets.Get(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, p)
	}

	b := p.Values.Bindings()
	rows := make([][]string, 0, len(template.CanonicalTokens)+2)
	for _, tok := range template.CanonicalTokens {
		if tok == template.TokenPassword {
			continue
		}
		rows = append(rows, []string{tok, b[tok]})
	}
	rows = append(rows, []string{"template", p.Template}, []string{"working_dir", p.WorkingDir})

	fmt.Fprintln(out, ui.InfoStyle().Bold(true).Render(p.Name))
	fmt.Fprint(out, ui.RenderTable([]ui.TableColumn{{Title: "KEY"}, {Title: "VALUE"}}, rows))
	return nil
}

func presetSave(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	p := store.Preset{Name: name}
	if existing, err := a.store.Presets.Get(name); err == nil {
		p = existing
	} else if !store.IsNotFound(err) {
		return err
	}

	sets, err := template.ParseAssignments(presetSaveSet)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Bad --set value",
			"Use --set name=value, e.g. --set COM1=COM3.")
	}
	values, err := valuesFromBindings(a.cfg.Expander(), sets)
	if err != nil {
		return err
	}
	p.Values = p.Values.Merge(values)

	if presetSaveTemplate != "" {
		if !a.store.Templates.Exists(presetSaveTemplate) {
			a.log.Warn("template '%s' doesn't exist yet", presetSaveTemplate)
		}
		p.Template = presetSaveTemplate
	}
	if presetSaveWorkDir != "" {
		p.WorkingDir = presetSaveWorkDir
	}

	if err := a.store.Presets.Save(p); err != nil {
		return err
	}
	printDone(cmd, fmt.Sprintf("Saved preset '%s'", p.Name))
	return nil
}

// valuesFromBindings maps --set assignments onto preset fields. Only the
// canonical tokens can be stored, and never the password.
func valuesFromBindings(e template.Expander, b template.Bindings) (template.Values, error) {
	var v template.Values
	for k, val := range b {
		switch e.Canonical(k) {
		case template.TokenComPort1:
			v.ComPort1 = val
		case template.TokenComPort2:
			v.ComPort2 = val
		case template.TokenUsername:
			v.Username = val
		case template.TokenOpco:
			v.Opco = val
		case template.TokenProgram:
			v.Program = val
		case template.TokenWorkDir:
			v.WorkDir = val
		case template.TokenPassword:
			return v, errors.New(errors.ErrConfig,
				"Presets never store the password",
				"Supply it at run time with CQ_BINDINGS_PASSWORD, --set password=..., or --prompt.")
		default:
			return v, errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a token a preset can hold", k),
				"Presets hold comport1, comport2, username, opco, program and wd.")
		}
	}
	return v, nil
}
