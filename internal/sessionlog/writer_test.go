package sessionlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/cq/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestNew_TildeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	l, err := New("~/.cq-test-logs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cq-test-logs"), l.Dir())
}

func TestAppend_FormatsAndNamesByDay(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 14, 9, 5, 7, 0, time.Local)

	l, err := New(dir, WithClock(fixedClock(at)))
	require.NoError(t, err)

	l.Append("> flash meter")
	l.AppendError("port busy")

	path := filepath.Join(dir, "2026-03-14.log")
	assert.Equal(t, path, l.Today())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[09:05:07] > flash meter\n[09:05:07] [ERR] port busy\n", string(data))
}

func TestAppend_RollsOverAtMidnight(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 14, 23, 59, 59, 0, time.Local)

	l, err := New(dir, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	l.Append("late")
	now = now.Add(2 * time.Second)
	l.Append("early")

	files, err := List(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "2026-03-15.log", files[0].Name())
	assert.Equal(t, "2026-03-14.log", files[1].Name())
}

func TestAppend_ConcurrentWritersKeepLinesWhole(t *testing.T) {
	dir := t.TempDir()

	a, err := New(dir)
	require.NoError(t, err)
	b, err := New(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); a.Append("from-a") }()
		go func() { defer wg.Done(); b.Append("from-b") }()
	}
	wg.Wait()

	data, err := os.ReadFile(a.Today())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 100)
	for _, line := range lines {
		assert.Regexp(t, `^\[\d\d:\d\d:\d\d\] from-[ab]$`, line)
	}
}

func TestAppend_FailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	buf := logger.NewBufferLogger()
	l, err := New(filepath.Join(blocker, "logs"), WithLogger(buf))
	require.NoError(t, err)

	assert.NotPanics(t, func() { l.Append("lost") })
	assert.True(t, buf.HasLevel("debug"))
}

func TestNilLogIsNoop(t *testing.T) {
	var l *Log
	assert.NotPanics(t, func() {
		l.Append("x")
		l.AppendError("y")
	})
	assert.Empty(t, l.Dir())
	assert.Empty(t, l.Today())
}
