package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/store"
	"github.com/rileyhilliard/cq/internal/template"
	"github.com/rileyhilliard/cq/internal/ui"
	"github.com/rileyhilliard/cq/internal/util"
)

var (
	templateAddText        string
	templateAddFile        string
	templateAddDescription string
	templateAddForce       bool
	templateAddSnippets    []string
	templateRmYes          bool
	templateExportOut      string
	templateExportOnly     bool
	templateImportReplace  bool
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates", "t"},
	Short:   "Manage saved command templates",
	Long: `Templates are saved in <store_dir>/templates, one YAML file each.

A template body has one command per line. Blank lines and lines starting with
#, //, :: or REM are skipped. "Description = command" gives a line a label.
Tokens are written {name} or {Q:name}; Q: quotes the value if it has spaces.`,
}

var templateListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List templates",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return templateList(cmd)
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return templateShow(cmd, args[0])
	},
}

var templateAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a template",
	Long: `Save a template from --text, --file, or standard input.

Built-in snippets from 'cq template snippets' can be appended with --snippet,
alone or after a body.

Examples:
  cq template add ping --text "ping -n 1 {COM1}"
  cq template add flash --file flash.txt --description "Flash firmware"
  cq template add reset --snippet set-comport-1 --snippet demand-reset
  cat flash.txt | cq template add flash --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return templateAdd(cmd, args[0])
	},
}

var templateSnippetsCmd = &cobra.Command{
	Use:   "snippets",
	Short: "List built-in snippets for template add --snippet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return templateSnippets(cmd)
	},
}

var templateRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a template",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return templateRm(cmd, args[0])
	},
}

var templateRenameCmd = &cobra.Command{
	Use:     "rename <old> <new>",
	Aliases: []string{"mv"},
	Short:   "Rename a template",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		if err := a.store.Templates.Rename(args[0], args[1]); err != nil {
			return err
		}
		printDone(cmd, fmt.Sprintf("Renamed template '%s' to '%s'", args[0], args[1]))
		return nil
	},
}

var templateExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write templates, presets and sequences to one YAML file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return templateExport(cmd)
	},
}

var templateImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load an export file into the store",
	Long: `Load an export file ("-" for standard input). Entries that already exist are
skipped unless --overwrite is given. Preset passwords are never imported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return templateImport(cmd, args[0])
	},
}

func init() {
	templateAddCmd.Flags().StringVar(&templateAddText, "text", "", "template body")
	templateAddCmd.Flags().StringVarP(&templateAddFile, "file", "f", "", "read the body from a file (- for stdin)")
	templateAddCmd.Flags().StringVar(&templateAddDescription, "description", "", "short description")
	templateAddCmd.Flags().BoolVar(&templateAddForce, "force", false, "replace an existing template")
	templateAddCmd.Flags().StringSliceVar(&templateAddSnippets, "snippet", nil, "append a built-in snippet (repeatable)")
	_ = templateAddCmd.RegisterFlagCompletionFunc("snippet", completeSnippetKeys)
	templateRmCmd.Flags().BoolVarP(&templateRmYes, "yes", "y", false, "don't ask for confirmation")
	templateExportCmd.Flags().StringVarP(&templateExportOut, "out", "o", "", "output file (default: stdout)")
	templateExportCmd.Flags().BoolVar(&templateExportOnly, "templates-only", false, "leave out presets and sequences")
	templateImportCmd.Flags().BoolVar(&templateImportReplace, "overwrite", false, "replace entries that already exist")

	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateAddCmd, templateSnippetsCmd, templateRmCmd,
		templateRenameCmd, templateExportCmd, templateImportCmd)
	rootCmd.AddCommand(templateCmd)
}

type templateView struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Lines       int      `json:"lines"`
	Tokens      []string `json:"tokens"`
	Text        string   `json:"text,omitempty"`
}

func newTemplateView(a *app, t template.Template, withText bool) templateView {
	v := templateView{
		Name:        t.Name,
		Description: t.Description,
		Lines:       len(template.ParseLines(t.Text)),
		Tokens:      a.cfg.Expander().ListTokensUsed(t.Text),
	}
	if withText {
		v.Text = t.Text
	}
	return v
}

func templateList(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	all, err := a.store.Templates.List()
	if err != nil {
		return err
	}

	views := make([]templateView, len(all))
	for i, t := range all {
		views[i] = newTemplateView(a, t, false)
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, views)
	}
	if len(views) == 0 {
		fmt.Fprintln(out, "No templates saved.")
		fmt.Fprintln(out, ui.MutedStyle().Render("Add one with 'cq template add <name> --text \"...\"'."))
		return nil
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{v.Name, strconv.Itoa(v.Lines), v.Description}
	}
	fmt.Fprint(out, ui.RenderTable([]ui.TableColumn{{Title: "NAME"}, {Title: "LINES"}, {Title: "DESCRIPTION", Width: 48}}, rows))
	return nil
}

func templateShow(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	t, err := a.store.Templates.Get(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, newTemplateView(a, t, true))
	}
	fmt.Fprintln(out, ui.InfoStyle().Bold(true).Render(t.Name))
	if t.Description != "" {
		fmt.Fprintln(out, ui.MutedStyle().Render(t.Description))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.TrimRight(t.Text, "\n"))
	return nil
}

func templateAdd(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	snippets, err := lookupSnippets(templateAddSnippets)
	if err != nil {
		return err
	}

	var text string
	if len(snippets) == 0 || templateAddText != "" || templateAddFile != "" {
		if text, err = readTemplateBody(cmd); err != nil {
			return err
		}
	}
	if len(snippets) > 0 {
		text = template.AppendSnippets(text, snippets...)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New(errors.ErrTemplate,
			"The template body is empty",
			"Pass --text, --file, or pipe the body on standard input.")
	}
	if !templateAddForce && a.store.Templates.Exists(name) {
		return errors.New(errors.ErrStore,
			fmt.Sprintf("Template '%s' already exists", name),
			"Use --force to replace it.")
	}

	description := templateAddDescription
	if description == "" && len(snippets) == 1 {
		description = snippets[0].Description
	}
	t := template.Template{Name: strings.TrimSpace(name), Description: description, Text: text}
	if err := a.store.Templates.Save(t); err != nil {
		return err
	}
	n := len(template.ParseLines(text))
	printDone(cmd, fmt.Sprintf("Saved template '%s' (%d %s)", t.Name, n, util.Plural(n, "command")))
	return nil
}

func lookupSnippets(names []string) ([]template.Snippet, error) {
	out := make([]template.Snippet, 0, len(names))
	for _, name := range names {
		s, ok := template.LookupSnippet(name)
		if !ok {
			return nil, errors.New(errors.ErrNotFound,
				fmt.Sprintf("No snippet named '%s'", name),
				"Run 'cq template snippets' to see the built-in snippets.")
		}
		out = append(out, s)
	}
	return out, nil
}

type snippetView struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

func templateSnippets(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if machineMode {
		views := make([]snippetView, 0, len(template.Snippets))
		for _, s := range template.Snippets {
			views = append(views, snippetView(s))
		}
		return WriteJSONSuccess(out, views)
	}

	category := ""
	for _, s := range template.Snippets {
		if s.Category != category {
			if category != "" {
				fmt.Fprintln(out)
			}
			category = s.Category
			fmt.Fprintln(out, ui.InfoStyle().Bold(true).Render(category))
		}
		fmt.Fprintf(out, "  %-16s %s\n", s.Key, ui.MutedStyle().Render(s.Description))
		fmt.Fprintf(out, "  %-16s %s\n", "", s.Text)
	}
	return nil
}

// readTemplateBody picks the body from --text, --file, or piped stdin.
func readTemplateBody(cmd *cobra.Command) (string, error) {
	switch {
	case templateAddText != "" && templateAddFile != "":
		return "", errors.New(errors.ErrConfig,
			"--text and --file can't be used together",
			"Pick one source for the template body.")
	case templateAddText != "":
		return templateAddText, nil
	case templateAddFile == "-":
		return readAll(cmd.InOrStdin())
	case templateAddFile != "":
		data, err := os.ReadFile(templateAddFile)
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrTemplate,
				"Can't read "+templateAddFile,
				"Check the path.")
		}
		return string(data), nil
	case !stdinIsTerminal():
		return readAll(cmd.InOrStdin())
	}
	return "", nil
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrTemplate, "Can't read standard input", "")
	}
	return string(data), nil
}

func templateRm(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	t, err := a.store.Templates.Get(name)
	if err != nil {
		return err
	}
	if ok, err := confirmDelete(cmd, "template", t.Name, templateRmYes); !ok || err != nil {
		return err
	}
	if err := a.store.Templates.Delete(t.Name); err != nil {
		return err
	}
	printDone(cmd, fmt.Sprintf("Deleted template '%s'", t.Name))
	return nil
}

func templateExport(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if templateExportOut != "" {
		f, err := os.Create(templateExportOut)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrStore,
				"Can't create "+templateExportOut,
				"Check the path and your permissions.")
		}
		defer f.Close()
		w = f
	}

	b, err := a.store.Export(w, store.ExportOptions{TemplatesOnly: templateExportOnly})
	if err != nil {
		return err
	}
	if templateExportOut != "" {
		printDone(cmd, fmt.Sprintf("Exported %d templates, %d presets, %d sequences to %s",
			len(b.Templates), len(b.Presets), len(b.Sequences), templateExportOut))
	}
	return nil
}

func templateImport(cmd *cobra.Command, path string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	r := cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrStore,
				"Can't open "+path,
				"Check the path.")
		}
		defer f.Close()
		r = f
	}

	report, err := a.store.Import(r, templateImportReplace)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(out, report)
	}
	for _, s := range report.Added {
		fmt.Fprintf(out, "  %s added %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), s)
	}
	for _, s := range report.Replaced {
		fmt.Fprintf(out, "  %s replaced %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), s)
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(out, "  %s skipped %s %s\n", ui.MutedStyle().Render(ui.SymbolSkipped), s, ui.MutedStyle().Render("(exists)"))
	}
	printDone(cmd, fmt.Sprintf("Imported %d of %d entries", report.Total(), report.Total()+len(report.Skipped)))
	return nil
}

// confirmDelete asks before deleting. Without a terminal, --yes is required.
// A declined prompt prints "Cancelled." and returns false.
func confirmDelete(cmd *cobra.Command, kind, name string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !stdinIsTerminal() {
		return false, errors.New(errors.ErrConfig,
			fmt.Sprintf("Refusing to delete %s '%s' without confirmation", kind, name),
			"Pass --yes when running non-interactively.")
	}
	if !ui.Confirm(fmt.Sprintf("Delete %s '%s'?", kind, name), "This cannot be undone") {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return false, nil
	}
	return true, nil
}

func printDone(cmd *cobra.Command, msg string) {
	if machineMode {
		_ = WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle().Render(ui.SymbolSuccess)+" "+msg)
}
