package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/store"
	"github.com/rileyhilliard/cq/internal/ui"
)

var (
	sequenceSaveDescription string
	sequenceRmYes           bool
	sequenceRunFlags        RunFlags
)

var sequenceCmd = &cobra.Command{
	Use:     "sequence",
	Aliases: []string{"sequences", "seq"},
	Short:   "Manage and run ordered lists of templates",
	Long: `A sequence names templates to run back to back as a single queue. The
stop-on-error policy applies across the whole sequence.`,
}

var sequenceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sequences",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sequenceList(cmd)
	},
}

var sequenceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a sequence's templates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sequenceShow(cmd, args[0])
	},
}

var sequenceSaveCmd = &cobra.Command{
	Use:   "save <name> <template>...",
	Short: "Create or replace a sequence",
	Long: `Save a sequence of templates, in the order given. Every template must exist.

Example:
  cq sequence save full-setup login flash verify --description "Bench bring-up"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sequenceSave(cmd, args[0], args[1:])
	},
}

var sequenceRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a sequence",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		s, err := a.store.Sequences.Get(args[0])
		if err != nil {
			return err
		}
		if ok, err := confirmDelete(cmd, "sequence", s.Name, sequenceRmYes); !ok || err != nil {
			return err
		}
		if err := a.store.Sequences.Delete(s.Name); err != nil {
			return err
		}
		printDone(cmd, fmt.Sprintf("Deleted sequence '%s'", s.Name))
		return nil
	},
}

var sequenceRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run every template of a sequence as one queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sequenceRun(cmd, args[0], &sequenceRunFlags)
	},
}

func init() {
	sequenceSaveCmd.Flags().StringVar(&sequenceSaveDescription, "description", "", "short description")
	sequenceRmCmd.Flags().BoolVarP(&sequenceRmYes, "yes", "y", false, "don't ask for confirmation")
	AddRunFlags(sequenceRunCmd, &sequenceRunFlags)

	sequenceCmd.AddCommand(sequenceListCmd, sequenceShowCmd, sequenceSaveCmd, sequenceRmCmd, sequenceRunCmd)
	rootCmd.AddCommand(sequenceCmd)
}

func sequenceList(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	all, err := a.store.Sequences.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, all)
	}
	if len(all) == 0 {
		fmt.Fprintln(out, "No sequences saved.")
		fmt.Fprintln(out, ui.MutedStyle().Render("Create one with 'cq sequence save <name> <template>...'."))
		return nil
	}

	rows := make([][]string, len(all))
	for i, s := range all {
		rows[i] = []string{s.Name, strings.Join(s.Templates, " > "), s.Description}
	}
	fmt.Fprint(out, ui.RenderTable([]ui.TableColumn{{Title: "NAME"}, {Title: "TEMPLATES"}, {Title: "DESCRIPTION", Width: 40}}, rows))
	return nil
}

func sequenceShow(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	s, err := a.store.Sequences.Get(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, s)
	}
	fmt.Fprintln(out, ui.InfoStyle().Bold(true).Render(s.Name))
	if s.Description != "" {
		fmt.Fprintln(out, ui.MutedStyle().Render(s.Description))
	}
	for i, t := range s.Templates {
		mark := ui.SuccessStyle().Render(ui.SymbolSuccess)
		if !a.store.Templates.Exists(t) {
			mark = ui.ErrorStyle().Render(ui.SymbolFail + " missing")
		}
		fmt.Fprintf(out, "  %d. %s %s\n", i+1, t, mark)
	}
	return nil
}

func sequenceSave(cmd *cobra.Command, name string, templates []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	seq := store.Sequence{Name: name, Description: sequenceSaveDescription, Templates: templates}
	resolved, err := a.store.ResolveSequence(seq)
	if err != nil {
		return err
	}
	// Store the templates' own spelling.
	for i, t := range resolved {
		seq.Templates[i] = t.Name
	}

	if err := a.store.Sequences.Save(seq); err != nil {
		return err
	}
	printDone(cmd, fmt.Sprintf("Saved sequence '%s' (%d templates)", seq.Name, len(seq.Templates)))
	return nil
}

func sequenceRun(cmd *cobra.Command, name string, flags *RunFlags) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	r, err := a.resolve(&flags.BindingFlags)
	if err != nil {
		return err
	}
	seq, err := a.store.Sequences.Get(name)
	if err != nil {
		return err
	}

	if flags.Prompt {
		templates, err := a.store.ResolveSequence(seq)
		if err != nil {
			return err
		}
		bodies := make([]string, len(templates))
		for i, t := range templates {
			bodies[i] = t.Text
		}
		if err := a.promptMissing(strings.Join(bodies, "\n"), r.bindings); err != nil {
			return err
		}
	}

	items, err := a.store.SequenceQueue(seq, a.cfg.Expander(), r.bindings)
	if err != nil {
		return err
	}
	return a.runItems(cmd, seq.Name, items, flags, r)
}
