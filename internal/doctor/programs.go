package doctor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rileyhilliard/cq/internal/exec"
	"github.com/rileyhilliard/cq/internal/store"
	"github.com/rileyhilliard/cq/internal/template"
)

// shellBuiltins never resolve to a file, so they are not looked up.
var shellBuiltins = map[string]bool{
	".": true, ":": true, "[": true, "alias": true, "call": true, "cd": true,
	"echo": true, "eval": true, "exec": true, "exit": true, "export": true,
	"false": true, "for": true, "if": true, "pushd": true, "popd": true,
	"pwd": true, "read": true, "set": true, "shift": true, "source": true,
	"start": true, "test": true, "true": true, "type": true, "unset": true,
	"wait": true, "while": true,
}

// ProgramsCheck looks up the program each template line starts with, the
// way a run would find it.
type ProgramsCheck struct {
	Templates []template.Template
	WorkDir   string
}

func (c *ProgramsCheck) Name() string     { return "template_programs" }
func (c *ProgramsCheck) Category() string { return CategoryPrograms }

func (c *ProgramsCheck) Run() CheckResult {
	var missing, outside []string
	var hint string
	seen := make(map[string]bool)
	checked := 0

	for _, t := range c.Templates {
		for _, line := range template.ParseLines(t.Text) {
			prog := leadingProgram(line.Text)
			if prog == "" || seen[prog] {
				continue
			}
			seen[prog] = true
			checked++

			result := exec.LocateProgram(prog, c.WorkDir)
			switch {
			case !result.Found():
				missing = append(missing, fmt.Sprintf("%s (%s)", prog, t.Name))
			case result.Source == exec.FoundInCommon:
				outside = append(outside, prog)
				hint = result.Suggestion()
			}
		}
	}
	sort.Strings(missing)
	sort.Strings(outside)

	switch {
	case len(missing) > 0:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Not found: " + strings.Join(missing, ", "),
			Suggestion: "Install them, use full paths, or set 'working_dir' to where they live",
		}
	case len(outside) > 0:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Outside PATH: " + strings.Join(outside, ", "),
			Suggestion: hint,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d program%s found", checked, pluralize(checked)),
	}
}

func (c *ProgramsCheck) Fix() error {
	return nil
}

// NewProgramsChecks creates the template program check. Templates that
// fail to load are reported by the store checks instead.
func NewProgramsChecks(s *store.Store, workDir string) []Check {
	templates, _ := s.Templates.List()
	return []Check{&ProgramsCheck{Templates: templates, WorkDir: workDir}}
}

// leadingProgram returns the program a command line starts with, or ""
// for builtins, variable assignments and token-named programs.
func leadingProgram(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	prog := strings.Trim(fields[0], `"'`)
	switch {
	case prog == "",
		strings.ContainsAny(prog, "{}$=%|&<>();"),
		shellBuiltins[strings.ToLower(prog)]:
		return ""
	}
	return prog
}
