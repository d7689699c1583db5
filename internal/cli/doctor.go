package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/doctor"
	"github.com/rileyhilliard/cq/internal/ui"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, store, logs and template programs",
	Long: `Run local health checks and print a report:

  CONFIG    config file, schema, shell, working directory
  STORE     store directory, leftover locks, presets and sequences
            that name missing templates
  LOGS      session log directory and size
  PROGRAMS  programs the templates call, looked up like a run would

Exits 1 when any check fails. --fix creates missing directories, writes a
default .cq.yaml and removes leftover locks.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := collectChecks()
	results := doctor.RunAll(checks)
	if doctorFix {
		doctor.FixAll(checks, results)
	}

	out := cmd.OutOrStdout()
	if machineMode {
		if err := WriteJSONSuccess(out, doctorReport(checks, results)); err != nil {
			return err
		}
	} else {
		renderDoctorText(out, checks, results)
	}

	if doctor.HasFailures(results) {
		return &ExitError{Code: exitFailed}
	}
	return nil
}

// collectChecks gathers every check the loaded config allows. A config
// that won't load still gets its config checks, which report why.
func collectChecks() []doctor.Check {
	initDir, _ := os.Getwd()
	a, err := newApp(configFlag)
	if err != nil {
		return doctor.NewConfigChecks(configFlag, initDir, nil)
	}
	ui.SetColorMode(colorMode(a.cfg), stdoutIsTerminal())

	var checks []doctor.Check
	checks = append(checks, doctor.NewConfigChecks(configFlag, initDir, a.cfg)...)
	checks = append(checks, doctor.NewStoreChecks(a.store)...)
	checks = append(checks, doctor.NewLogsChecks(a.cfg.Logs)...)
	checks = append(checks, doctor.NewProgramsChecks(a.store, a.cfg.WorkingDir)...)
	return checks
}

func doctorReport(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	grouped := make(map[string][]doctor.CheckResult)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], results[i])
	}

	output := DoctorOutput{Categories: []CategoryOutput{}}
	for _, cat := range doctor.CategoryOrder {
		if rs, ok := grouped[cat]; ok {
			output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: rs})
		}
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

func renderDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w, headerStyle.Render("cq diagnostic report"))
	fmt.Fprintln(w)

	grouped := make(map[string][]int)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], i)
	}

	for _, category := range doctor.CategoryOrder {
		indices := grouped[category]
		if len(indices) == 0 {
			continue
		}
		fmt.Fprintln(w, headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(w, results[idx])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, ui.MutedStyle().Render(strings.Repeat("━", ui.HeaderWidth)))

	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), doctor.Summary(results))
		return
	}
	symbol := ui.WarningStyle().Render(ui.SymbolWarning)
	if doctor.HasFailures(results) {
		symbol = ui.ErrorStyle().Render(ui.SymbolFail)
	}
	fmt.Fprintf(w, "%s %s\n", symbol, doctor.Summary(results))
	if doctor.FixableCount(results) > 0 && !doctorFix {
		fmt.Fprintf(w, "  Run with %s to attempt automatic fixes where possible.\n", ui.MutedStyle().Render("--fix"))
	}
}

// renderCheckResult renders a single check result.
func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	symbol, style := ui.SymbolSuccess, ui.SuccessStyle()
	switch result.Status {
	case doctor.StatusWarn:
		symbol, style = ui.SymbolWarning, ui.WarningStyle()
	case doctor.StatusFail:
		symbol, style = ui.SymbolFail, ui.ErrorStyle()
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)
	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(line))
		}
	}
}
