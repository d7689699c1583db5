package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/exec"
	"github.com/rileyhilliard/cq/internal/template"
	"github.com/rileyhilliard/cq/internal/ui"
	"github.com/rileyhilliard/cq/internal/util"
)

// Exit statuses for queue runs.
const (
	exitFailed    = 1
	exitCancelled = 130
)

var runFlags RunFlags

var runCmd = &cobra.Command{
	Use:   "run [template]",
	Short: "Expand a template and run its commands in order",
	Long: `Expand every line of a saved template and run the commands one after another.

Token values come from the config's bindings, CQ_BINDINGS_* variables, a preset
(--preset) and --set, in increasing priority. With --preset and no template
argument, the preset's own template is used.

Examples:
  cq run flash --set COM1=COM3
  cq run --preset bench-a
  cq run flash --preset bench-a --prompt --stop-on-error=false`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTemplateCommand(cmd, args, &runFlags)
	},
}

func init() {
	AddRunFlags(runCmd, &runFlags)
	rootCmd.AddCommand(runCmd)
}

func runTemplateCommand(cmd *cobra.Command, args []string, flags *RunFlags) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	r, err := a.resolve(&flags.BindingFlags)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	} else if r.preset != nil {
		name = r.preset.Template
	}
	if name == "" {
		return errors.New(errors.ErrTemplate,
			"No template given",
			"Pass a template name, or a --preset that names one. See 'cq template list'.")
	}

	t, err := a.store.Templates.Get(name)
	if err != nil {
		return err
	}

	if flags.Prompt {
		if err := a.promptMissing(t.Text, r.bindings); err != nil {
			return err
		}
	}

	items := a.cfg.Expander().BuildQueue(t.Text, r.bindings)
	return a.runItems(cmd, t.Name, items, flags, r)
}

// runItems runs a queue and turns its outcome into an exit status.
func (a *app) runItems(cmd *cobra.Command, label string, items []template.Item, flags *RunFlags, r *resolved) error {
	timeout, err := ParseTimeout(flags.Timeout, a.cfg.Run.Timeout)
	if err != nil {
		return err
	}
	opts := exec.QueueOptions{
		StopOnError:  boolFlag(cmd, "stop-on-error", flags.StopOnError, a.cfg.Run.StopOnError),
		ShowDetailed: boolFlag(cmd, "detailed", flags.Detailed, a.cfg.Run.ShowDetailed),
		WorkDir:      r.workDir,
	}

	ctx, cancel := runContext(cmd.Context(), timeout)
	defer cancel()

	out := cmd.OutOrStdout()
	var sink exec.Sink
	var collected *eventCollector
	if machineMode {
		collected = &eventCollector{}
		sink = collected
	} else {
		where := r.workDir
		if where == "" {
			where = "current directory"
		}
		fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("%s: %d %s in %s", label, len(items), util.Plural(len(items), "command"), where)))
		sink = ui.NewRenderer(out, cmd.ErrOrStderr(), ui.RenderOptions{Timestamps: a.cfg.Output.Timestamps})
	}

	res, runErr := a.runner().RunQueue(ctx, items, opts, sink)
	if runErr != nil {
		a.log.Debug("session %s ended early (%s): %v", res.Session, errors.Code(runErr), runErr)
	}
	timedOut := stderrors.Is(ctx.Err(), context.DeadlineExceeded)

	if machineMode {
		if err := WriteJSONSuccess(out, newRunReport(label, res, collected.events(), timedOut)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, ui.RenderQueueSummary(res, len(items)))
		if timedOut {
			fmt.Fprintln(out, ui.WarningStyle().Render(fmt.Sprintf("Timed out after %s", timeout)))
		}
	}
	return queueExit(res)
}

// queueExit maps a queue outcome to an exit status; nil means 0.
func queueExit(res *exec.QueueResult) error {
	switch {
	case res.State == exec.Cancelled:
		return &ExitError{Code: exitCancelled}
	case !res.Success, len(res.Failed()) > 0:
		return &ExitError{Code: exitFailed}
	}
	return nil
}

// eventCollector keeps events for --json output.
type eventCollector struct {
	mu  sync.Mutex
	evs []exec.Event
}

func (c *eventCollector) Emit(ev exec.Event) {
	c.mu.Lock()
	c.evs = append(c.evs, ev)
	c.mu.Unlock()
}

func (c *eventCollector) events() []exec.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]exec.Event(nil), c.evs...)
}

type runReport struct {
	Name     string          `json:"name"`
	Session  string          `json:"session"`
	State    string          `json:"state"`
	Success  bool            `json:"success"`
	TimedOut bool            `json:"timed_out,omitempty"`
	Items    []runItemReport `json:"items"`
	Output   []runLine       `json:"output"`
}

type runItemReport struct {
	Line     int    `json:"line"`
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type runLine struct {
	Time   time.Time `json:"time"`
	Stream string    `json:"stream"`
	Text   string    `json:"text"`
}

func newRunReport(name string, res *exec.QueueResult, evs []exec.Event, timedOut bool) runReport {
	rep := runReport{
		Name:     name,
		Session:  res.Session,
		State:    res.State.String(),
		Success:  res.Success,
		TimedOut: timedOut,
		Items:    make([]runItemReport, 0, len(res.Items)),
		Output:   make([]runLine, 0, len(evs)),
	}
	for _, it := range res.Items {
		ir := runItemReport{
			Line:     it.Item.Line,
			Command:  it.Item.Verbose,
			ExitCode: it.ExitCode,
			Duration: it.Finished.Sub(it.Started).String(),
		}
		if it.Err != nil {
			ir.Error = strings.TrimSpace(ErrorToJSON(it.Err).Message)
		}
		rep.Items = append(rep.Items, ir)
	}
	for _, ev := range evs {
		rep.Output = append(rep.Output, runLine{Time: ev.Time, Stream: ev.Kind.String(), Text: ev.Text})
	}
	return rep
}
