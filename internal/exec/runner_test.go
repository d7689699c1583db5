//go:build !windows

package exec

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/sessionlog"
	"github.com/rileyhilliard/cq/internal/template"
)

// collector is a Sink that records events for assertions.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) texts(kind EventKind) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.events {
		if e.Kind == kind {
			out = append(out, e.Text)
		}
	}
	return out
}

func (c *collector) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func newTestRunner(opts ...Option) *Runner {
	return NewRunner(append([]Option{WithShell("/bin/sh -c")}, opts...)...)
}

func items(commands ...string) []template.Item {
	out := make([]template.Item, len(commands))
	for i, c := range commands {
		out[i] = template.Item{Command: c, Verbose: c, Friendly: c, Line: i + 1}
	}
	return out
}

func TestRunOne_StreamsStdout(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	code, err := r.RunOne(context.Background(), "echo hello; echo world", "", sink)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"hello", "world"}, sink.texts(Stdout))
	assert.Equal(t, Completed, r.State())
	assert.False(t, r.Active())
}

func TestRunOne_NonZeroExitIsNotAnError(t *testing.T) {
	r := newTestRunner()

	code, err := r.RunOne(context.Background(), "exit 42", "", nil)

	require.NoError(t, err)
	assert.Equal(t, 42, code)
}

func TestRunOne_StderrAndPartialLines(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	_, err := r.RunOne(context.Background(), "echo oops >&2; printf 'no newline'", "", sink)

	require.NoError(t, err)
	assert.Equal(t, []string{"oops"}, sink.texts(Stderr))
	assert.Equal(t, []string{"no newline"}, sink.texts(Stdout))
}

func TestRunOne_WorkDir(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner()
	sink := &collector{}

	_, err := r.RunOne(context.Background(), "pwd", dir, sink)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	out := sink.texts(Stdout)
	require.Len(t, out, 1)
	got, err := filepath.EvalSymlinks(out[0])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunOne_LaunchFailure(t *testing.T) {
	r := newTestRunner(WithShell("/nonexistent/shell -c"))

	code, err := r.RunOne(context.Background(), "echo hi", "", nil)

	require.Error(t, err)
	assert.Equal(t, -1, code)
	assert.True(t, errors.IsCode(err, errors.ErrLaunch))
	assert.Equal(t, Faulted, r.State())
}

func TestRunOne_BlankWorkDirUsesCurrentDir(t *testing.T) {
	want, err := os.Getwd()
	require.NoError(t, err)
	want, err = filepath.EvalSymlinks(want)
	require.NoError(t, err)

	for _, wd := range []string{"", "   ", "\t"} {
		r := newTestRunner()
		sink := &collector{}

		code, err := r.RunOne(context.Background(), "pwd", wd, sink)
		require.NoError(t, err, "workDir %q", wd)
		assert.Equal(t, 0, code)

		out := sink.texts(Stdout)
		require.Len(t, out, 1)
		got, err := filepath.EvalSymlinks(out[0])
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRunOne_MissingWorkDirIsLaunchFailure(t *testing.T) {
	r := newTestRunner()
	missing := filepath.Join(t.TempDir(), "missing")

	code, err := r.RunOne(context.Background(), "echo hi", missing, nil)

	assert.Equal(t, -1, code)
	assert.True(t, errors.IsCode(err, errors.ErrLaunch))
	assert.Contains(t, err.Error(), missing)
	assert.NotContains(t, err.Error(), "/bin/sh")
	assert.Equal(t, Faulted, r.State())
}

func TestRunOne_WorkDirIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := newTestRunner().RunOne(context.Background(), "echo hi", file, nil)

	assert.True(t, errors.IsCode(err, errors.ErrLaunch))
	assert.Contains(t, err.Error(), "not a directory")
}

func TestRunOne_SessionLog(t *testing.T) {
	dir := t.TempDir()
	log, err := sessionlog.New(dir)
	require.NoError(t, err)

	r := newTestRunner(WithSessionLog(log))
	_, err = r.RunOne(context.Background(), "echo out; echo bad >&2", "", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(log.Today())
	require.NoError(t, err)
	assert.Contains(t, string(data), "] out\n")
	assert.Contains(t, string(data), "] [ERR] bad\n")
}

func TestRunQueue_StopOnError(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	res, err := r.RunQueue(context.Background(), items("echo one", "exit 3", "echo three"),
		QueueOptions{StopOnError: true}, sink)

	require.NoError(t, err)
	assert.Equal(t, StoppedOnError, res.State)
	assert.False(t, res.Success)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.Items[1].ExitCode)
	assert.Equal(t, []string{"one"}, sink.texts(Stdout))
	assert.Equal(t, []string{"> echo one", "> exit 3", MarkerStoppedOnError}, sink.texts(Marker))
	assert.Len(t, res.Failed(), 1)
}

func TestRunQueue_ContinueOnError(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	res, err := r.RunQueue(context.Background(), items("echo one", "exit 3", "echo three"),
		QueueOptions{StopOnError: false}, sink)

	require.NoError(t, err)
	assert.Equal(t, Completed, res.State)
	assert.True(t, res.Success)
	require.Len(t, res.Items, 3)
	assert.Equal(t, []string{"one", "three"}, sink.texts(Stdout))
	assert.Equal(t, MarkerCompleted, sink.texts(Marker)[3])
}

func TestRunQueue_DetailedShowsVerboseAndExitCodes(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	queue := []template.Item{
		{Command: "echo s3cret", Verbose: "echo ********", Friendly: "Login"},
		{Command: "exit 2", Verbose: "exit 2", Friendly: "Fail"},
	}
	res, err := r.RunQueue(context.Background(), queue,
		QueueOptions{StopOnError: false, ShowDetailed: true}, sink)
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.Equal(t, []string{
		"> echo ********",
		"[exit 0]",
		"> exit 2",
		"[exit 2]",
		MarkerCompleted,
	}, sink.texts(Marker))

	for _, e := range sink.all() {
		if e.Kind == Marker && e.Text == "[exit 2]" {
			assert.Equal(t, 2, e.ExitCode)
		}
	}
}

func TestRunQueue_FriendlyDisplayByDefault(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	queue := []template.Item{{Command: "true", Verbose: "true", Friendly: "Check device"}}
	_, err := r.RunQueue(context.Background(), queue, QueueOptions{}, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"> Check device", MarkerCompleted}, sink.texts(Marker))
}

func TestRunQueue_EmptyQueue(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	res, err := r.RunQueue(context.Background(), nil, QueueOptions{StopOnError: true}, sink)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{MarkerCompleted}, sink.texts(Marker))
}

func TestRunQueue_LaunchFault(t *testing.T) {
	t.Run("stop on error", func(t *testing.T) {
		r := newTestRunner(WithShell("/nonexistent/shell -c"))
		sink := &collector{}

		res, err := r.RunQueue(context.Background(), items("a", "b"), QueueOptions{StopOnError: true}, sink)

		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrLaunch))
		assert.Equal(t, Faulted, res.State)
		assert.False(t, res.Success)
		require.Len(t, res.Items, 1)
		assert.True(t, errors.IsCode(res.Items[0].Err, errors.ErrLaunch))
		assert.Len(t, sink.texts(Status), 1)
		assert.Equal(t, MarkerFaulted, sink.texts(Marker)[1])
	})

	t.Run("continue", func(t *testing.T) {
		r := newTestRunner(WithShell("/nonexistent/shell -c"))
		sink := &collector{}

		res, err := r.RunQueue(context.Background(), items("a", "b"), QueueOptions{StopOnError: false}, sink)

		require.NoError(t, err)
		assert.Equal(t, Completed, res.State)
		assert.True(t, res.Success)
		assert.Len(t, res.Items, 2)
		assert.Len(t, sink.texts(Status), 2)
	})
}

func TestRunQueue_MissingCommandHint(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	_, err := r.RunQueue(context.Background(), items("cq-no-such-program-xyz --flag"), QueueOptions{}, sink)
	require.NoError(t, err)

	status := sink.texts(Status)
	require.Len(t, status, 1)
	assert.Contains(t, status[0], "cq-no-such-program-xyz")
}

func TestRunQueue_SequentialTimestamps(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	res, err := r.RunQueue(context.Background(), items("echo a", "sleep 0.05", "echo b"), QueueOptions{}, sink)
	require.NoError(t, err)

	for i := 1; i < len(res.Items); i++ {
		assert.False(t, res.Items[i].Started.Before(res.Items[i-1].Finished),
			"item %d started before item %d finished", i, i-1)
	}

	events := sink.all()
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Time.Before(events[i-1].Time))
		assert.Equal(t, res.Session, events[i].Session)
	}
}

func TestRunQueue_PreCancelled(t *testing.T) {
	r := newTestRunner()
	sink := &collector{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.RunQueue(ctx, items("echo never"), QueueOptions{}, sink)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCancelled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Cancelled, res.State)
	assert.Empty(t, res.Items)
	assert.Equal(t, []string{MarkerCancelled}, sink.texts(Marker))
}

// pidAlive reports whether a process exists and is not a zombie.
func pidAlive(pid int) bool {
	if syscall.Kill(pid, 0) != nil {
		return false
	}
	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return true
	}
	// Field 3 is the state; it follows the parenthesised command name.
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) == 0 || fields[0] != "Z"
}

func TestRunQueue_CancelKillsProcessTree(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "child.pid")

	r := newTestRunner()
	sink := &collector{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan *QueueResult, 1)
	go func() {
		res, _ := r.RunQueue(ctx,
			items("sleep 30 & echo $! > "+pidFile+"; wait", "echo after"),
			QueueOptions{StopOnError: false}, sink)
		done <- res
	}()

	var pid int
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(pidFile)
		if err != nil {
			return false
		}
		pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
		return err == nil && pid > 0
	}, 5*time.Second, 10*time.Millisecond)

	start := time.Now()
	cancel()

	var res *QueueResult
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not return after cancellation")
	}
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, Cancelled, res.State)
	assert.False(t, res.Success)
	require.Len(t, res.Items, 1)
	assert.True(t, errors.IsCode(res.Items[0].Err, errors.ErrCancelled))
	assert.ErrorIs(t, res.Items[0].Err, context.Canceled)
	assert.NotContains(t, sink.texts(Stdout), "after")
	assert.Equal(t, MarkerCancelled, sink.texts(Marker)[1])

	assert.Eventually(t, func() bool { return !pidAlive(pid) }, 5*time.Second, 20*time.Millisecond,
		"background child %d survived cancellation", pid)
}

func TestRunner_StopCancelsActiveRun(t *testing.T) {
	r := newTestRunner()

	errc := make(chan error, 1)
	go func() {
		_, err := r.RunOne(context.Background(), "sleep 30", "", nil)
		errc <- err
	}()

	require.Eventually(t, r.Active, 5*time.Second, 5*time.Millisecond)
	r.Stop()

	select {
	case err := <-errc:
		assert.True(t, errors.IsCode(err, errors.ErrCancelled))
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not end the run")
	}
	assert.Equal(t, Cancelled, r.State())
}

func TestRunner_NewRunCancelsPrior(t *testing.T) {
	r := newTestRunner()
	first := &collector{}

	done := make(chan *QueueResult, 1)
	go func() {
		res, _ := r.RunQueue(context.Background(), items("sleep 30", "echo unreachable"), QueueOptions{}, first)
		done <- res
	}()
	require.Eventually(t, r.Active, 5*time.Second, 5*time.Millisecond)

	second := &collector{}
	code, err := r.RunOne(context.Background(), "echo second", "", second)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	select {
	case res := <-done:
		assert.Equal(t, Cancelled, res.State)
	case <-time.After(5 * time.Second):
		t.Fatal("prior queue never returned")
	}
	assert.Equal(t, []string{"second"}, second.texts(Stdout))
	assert.NotContains(t, first.texts(Stdout), "unreachable")
}

func TestRunner_StopWhenIdle(t *testing.T) {
	r := newTestRunner()
	assert.NotPanics(t, r.Stop)
	assert.Equal(t, Idle, r.State())
}

func TestWithShell(t *testing.T) {
	assert.Equal(t, []string{"bash", shellFlag}, NewRunner(WithShell("bash")).Shell())
	assert.Equal(t, []string{"zsh", "-l", "-c"}, NewRunner(WithShell("zsh -l -c")).Shell())
	assert.Equal(t, defaultShell(), NewRunner(WithShell("  ")).Shell())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "stopped on error", StoppedOnError.String())
	assert.Equal(t, MarkerCancelled, TerminalMarker(Cancelled))
	assert.Equal(t, MarkerCompleted, TerminalMarker(Completed))
}
