// Package exec runs expanded commands through the platform shell, streams
// their output line by line, and sequences queues of commands.
package exec

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/logger"
	"github.com/rileyhilliard/cq/internal/sessionlog"
	"github.com/rileyhilliard/cq/internal/template"
)

// State is where a Runner is in its lifecycle.
type State int

const (
	Idle State = iota
	Running
	Completed
	StoppedOnError
	Cancelled
	Faulted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case StoppedOnError:
		return "stopped on error"
	case Cancelled:
		return "cancelled"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Terminal markers, one of which ends every queue run.
const (
	MarkerCompleted      = "[queue completed]"
	MarkerStoppedOnError = "[queue stopped on error]"
	MarkerCancelled      = "[queue cancelled]"
	MarkerFaulted        = "[queue faulted]"
)

// TerminalMarker returns the marker text for a finished state.
func TerminalMarker(s State) string {
	switch s {
	case StoppedOnError:
		return MarkerStoppedOnError
	case Cancelled:
		return MarkerCancelled
	case Faulted:
		return MarkerFaulted
	default:
		return MarkerCompleted
	}
}

// DefaultWaitDelay bounds how long Wait blocks on output pipes after the
// process tree has been killed.
const DefaultWaitDelay = 2 * time.Second

// stderrTail is how many stderr lines are kept for missing-command hints.
const stderrTail = 20

// QueueOptions controls a queue run.
type QueueOptions struct {
	StopOnError  bool
	ShowDetailed bool
	WorkDir      string
}

// ItemResult records one executed queue item.
type ItemResult struct {
	Index    int
	Item     template.Item
	ExitCode int
	Err      error // launch or cancellation error, nil when the command ran
	Started  time.Time
	Finished time.Time
}

// QueueResult summarises a queue run.
type QueueResult struct {
	Session string
	State   State
	Items   []ItemResult
	// Success is false when the run was cancelled or stopped on error.
	Success bool
}

// Failed returns the items that exited nonzero or failed to launch.
func (r *QueueResult) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if it.Err != nil || it.ExitCode != 0 {
			out = append(out, it)
		}
	}
	return out
}

type session struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner executes commands one session at a time. Starting a run while
// another is active cancels the earlier one and waits for it to finish.
type Runner struct {
	shell     []string
	log       *sessionlog.Log
	logger    logger.Logger
	now       func() time.Time
	waitDelay time.Duration

	mu      sync.Mutex
	current *session
	state   State
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell sets the interpreter, e.g. "bash -c" or "pwsh -Command".
// A bare binary name gets the platform's command flag appended.
func WithShell(shell string) Option {
	return func(r *Runner) {
		fields := strings.Fields(shell)
		switch len(fields) {
		case 0:
			return
		case 1:
			r.shell = []string{fields[0], shellFlag}
		default:
			r.shell = fields
		}
	}
}

// WithSessionLog appends every output line and marker to l.
func WithSessionLog(l *sessionlog.Log) Option {
	return func(r *Runner) { r.log = l }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithClock overrides the event time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) { r.waitDelay = d }
}

// NewRunner creates a runner using the platform default shell.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		shell:     defaultShell(),
		now:       time.Now,
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logger.OrDefault(r.logger)
	return r
}

// Shell returns the interpreter argv prefix.
func (r *Runner) Shell() []string {
	return append([]string{}, r.shell...)
}

// Active reports whether a session is running.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// State returns the current state, or how the last session ended.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stop cancels the active session, if any. It does not wait.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.cancel()
	}
}

// begin cancels and drains any active session, then registers a new one.
func (r *Runner) begin(ctx context.Context) (context.Context, *session) {
	r.mu.Lock()
	for r.current != nil {
		prev := r.current
		r.mu.Unlock()
		r.logger.Debug("cancelling session %s before starting a new one", prev.id)
		prev.cancel()
		<-prev.done
		r.mu.Lock()
	}
	defer r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.current = s
	r.state = Running
	r.logger.Debug("session %s started", s.id)
	return ctx, s
}

func (r *Runner) finish(s *session, st State) {
	r.mu.Lock()
	if r.current == s {
		r.current = nil
	}
	r.state = st
	r.mu.Unlock()

	s.cancel()
	close(s.done)
	r.logger.Debug("session %s finished: %s", s.id, st)
}

func (r *Runner) emit(s *session, sink Sink, kind EventKind, text string, code int) {
	switch kind {
	case Stderr:
		r.log.AppendError(text)
	default:
		r.log.Append(text)
	}
	sink.Emit(Event{
		Kind:     kind,
		Text:     text,
		ExitCode: code,
		Time:     r.now(),
		Session:  s.id,
	})
}

// RunOne runs a single command in its own session. A nonzero exit is
// reported through the code, not the error.
func (r *Runner) RunOne(ctx context.Context, command, workDir string, sink Sink) (int, error) {
	if sink == nil {
		sink = Discard
	}
	ctx, s := r.begin(ctx)

	code, err := r.run(ctx, s, command, workDir, sink, nil)

	st := Completed
	switch {
	case errors.IsCode(err, errors.ErrCancelled):
		st = Cancelled
	case err != nil:
		st = Faulted
	}
	r.finish(s, st)
	return code, err
}

// RunQueue runs items strictly in order. Cancellation is checked before each
// item, and exactly one terminal marker is emitted. The result is never nil.
// The error is the cause that ended the run early: a CANCELLED error when
// the run was cancelled, or the launch error when a fault stopped the
// queue. Nonzero exits are not errors; they show up in QueueResult.
func (r *Runner) RunQueue(ctx context.Context, items []template.Item, opts QueueOptions, sink Sink) (*QueueResult, error) {
	if sink == nil {
		sink = Discard
	}
	ctx, s := r.begin(ctx)

	result := &QueueResult{Session: s.id, Items: make([]ItemResult, 0, len(items))}
	st := Completed
	var cause error

loop:
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			st = Cancelled
			cause = cancelled(err)
			break
		}

		r.emit(s, sink, Marker, "> "+item.Display(opts.ShowDetailed), 0)

		var tail []string
		ir := ItemResult{Index: i, Item: item, Started: r.now()}
		ir.ExitCode, ir.Err = r.run(ctx, s, item.Command, opts.WorkDir, sink, &tail)
		ir.Finished = r.now()
		result.Items = append(result.Items, ir)

		switch {
		case errors.IsCode(ir.Err, errors.ErrCancelled):
			st = Cancelled
			cause = ir.Err
			break loop
		case ir.Err != nil:
			r.emit(s, sink, Status, launchNotice(ir.Err), -1)
			if opts.StopOnError {
				st = Faulted
				cause = ir.Err
				break loop
			}
			continue
		}

		if opts.ShowDetailed {
			r.emit(s, sink, Marker, fmt.Sprintf("[exit %d]", ir.ExitCode), ir.ExitCode)
		}
		if ir.ExitCode != 0 {
			if hint := MissingCommandHint(item.Command, strings.Join(tail, "\n"), ir.ExitCode); hint != "" {
				r.emit(s, sink, Status, hint, ir.ExitCode)
			}
			if opts.StopOnError {
				st = StoppedOnError
				break loop
			}
		}
	}

	r.emit(s, sink, Marker, TerminalMarker(st), 0)
	result.State = st
	result.Success = st == Completed
	r.finish(s, st)
	return result, cause
}

func launchNotice(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return err.Error()
}

// run executes one command and blocks until it exits or ctx is cancelled.
// tail, when non-nil, collects the last stderr lines.
func (r *Runner) run(ctx context.Context, s *session, command, workDir string, sink Sink, tail *[]string) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, cancelled(err)
	}

	if strings.TrimSpace(workDir) == "" {
		workDir = ""
	} else if err := checkWorkDir(workDir); err != nil {
		return -1, err
	}

	cmd := osexec.CommandContext(ctx, r.shell[0])
	prepare(cmd, r.shell, command)
	cmd.Dir = workDir
	cmd.Cancel = func() error { return killTree(cmd) }
	cmd.WaitDelay = r.waitDelay

	var tailMu sync.Mutex
	stdout := newLineWriter(func(line string) {
		r.emit(s, sink, Stdout, line, 0)
	})
	stderr := newLineWriter(func(line string) {
		r.emit(s, sink, Stderr, line, 0)
		if tail != nil {
			tailMu.Lock()
			*tail = append(*tail, line)
			if len(*tail) > stderrTail {
				*tail = (*tail)[len(*tail)-stderrTail:]
			}
			tailMu.Unlock()
		}
	})
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("session %s: %s %q in %q", s.id, strings.Join(r.shell, " "), command, workDir)

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return -1, cancelled(ctx.Err())
		}
		return -1, errors.WrapWithCode(err, errors.ErrLaunch,
			"Couldn't start "+r.shell[0],
			"Check the 'shell' setting.")
	}

	waitErr := cmd.Wait()
	stdout.Flush()
	stderr.Flush()

	if ctx.Err() != nil {
		return -1, cancelled(ctx.Err())
	}
	if stderrors.Is(waitErr, osexec.ErrWaitDelay) {
		// A detached child kept the output pipes open after the shell exited.
		r.logger.Debug("session %s: output pipes still open after exit", s.id)
		return cmd.ProcessState.ExitCode(), nil
	}
	if waitErr != nil {
		var exitErr *osexec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, errors.WrapWithCode(waitErr, errors.ErrExec,
			"Command did not finish cleanly",
			"Output may be incomplete. Check the session log.")
	}
	return 0, nil
}

// checkWorkDir reports a missing or non-directory workDir as a launch fault
// naming the directory, before the shell gets a chance to blame itself.
func checkWorkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrLaunch,
			fmt.Sprintf("Working directory %s doesn't exist", dir),
			"Pass an existing directory with --wd or set 'wd' in the preset.")
	}
	if !info.IsDir() {
		return errors.New(errors.ErrLaunch,
			fmt.Sprintf("Working directory %s is not a directory", dir),
			"Pass a directory with --wd.")
	}
	return nil
}

func cancelled(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return errors.WrapWithCode(cause, errors.ErrCancelled,
		"Run cancelled",
		"The command and its child processes were stopped.")
}
