package cli

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/cq/internal/config"
	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/store"
	"github.com/rileyhilliard/cq/internal/template"
	"github.com/rileyhilliard/cq/internal/ui"
	"github.com/rileyhilliard/cq/internal/util"
)

// resolved holds the bindings and working directory for one run.
type resolved struct {
	bindings template.Bindings
	workDir  string        // "" runs in the current directory
	preset   *store.Preset // nil without --preset
}

// resolve merges token values, lowest priority first: config bindings
// (including CQ_BINDINGS_* from the environment), the preset, then --set.
// The wd token defaults to the effective working directory.
func (a *app) resolve(flags *BindingFlags) (*resolved, error) {
	r := &resolved{}
	values := a.cfg.Bindings

	presetDir := ""
	if flags.Preset != "" {
		p, err := a.store.Presets.Get(flags.Preset)
		if err != nil {
			return nil, err
		}
		r.preset = &p
		values = values.Merge(p.Values)
		presetDir = p.WorkingDir
	}

	dir := util.FirstNonEmpty(flags.WorkDir, presetDir, a.cfg.WorkingDir)
	if dir != "" {
		dir = config.ExpandPath(dir)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if err := config.ValidateWorkingDir(dir); err != nil {
			return nil, err
		}
	}
	r.workDir = dir

	b := values.Bindings()
	if b[template.TokenWorkDir] == "" {
		wd := dir
		if wd == "" {
			wd, _ = os.Getwd()
		}
		b[template.TokenWorkDir] = wd
	}

	sets, err := template.ParseAssignments(flags.Set)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Bad --set value",
			"Use --set name=value, e.g. --set COM1=COM3.")
	}
	expander := a.cfg.Expander()
	for k, v := range sets {
		b[expander.Canonical(k)] = v
	}

	r.bindings = b
	return r, nil
}

// promptMissing asks for every token text uses whose value is empty. It
// needs an interactive terminal.
func (a *app) promptMissing(text string, b template.Bindings) error {
	names := emptyTokens(a.cfg.Expander(), text, b)
	if len(names) == 0 {
		return nil
	}
	if !stdinIsTerminal() {
		return errors.New(errors.ErrConfig,
			"--prompt needs an interactive terminal",
			"Pass the values with --set, a preset, or CQ_BINDINGS_* variables.")
	}

	values := make([]string, len(names))
	fields := make([]ui.PromptField, len(names))
	for i, name := range names {
		fields[i] = ui.PromptField{
			Title:  name,
			Secret: name == template.TokenPassword,
			Value:  &values[i],
		}
	}
	if err := ui.PromptValues("Token values", fields); err != nil {
		return errors.WrapWithCode(err, errors.ErrCancelled,
			"Prompt cancelled",
			"Nothing was run.")
	}
	for i, name := range names {
		b[name] = values[i]
	}
	return nil
}

// emptyTokens lists tokens text uses that are bound to nothing.
func emptyTokens(e template.Expander, text string, b template.Bindings) []string {
	var out []string
	for _, name := range e.ListTokensUsed(text) {
		if b[name] == "" {
			out = append(out, name)
		}
	}
	return out
}
