package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv isolates a CLI invocation: a fresh home, working directory, store
// and log directory, and no terminal.
type testEnv struct {
	t     *testing.T
	home  string
	dir   string
	store string
	logs  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		t:     t,
		home:  filepath.Join(root, "home"),
		dir:   filepath.Join(root, "work"),
		store: filepath.Join(root, "store"),
		logs:  filepath.Join(root, "logs"),
	}
	require.NoError(t, mkdirs(env.home, env.dir))

	t.Setenv("HOME", env.home)
	t.Setenv("USERPROFILE", env.home)
	t.Setenv("CQ_STORE_DIR", env.store)
	t.Setenv("CQ_LOGS_DIR", env.logs)
	t.Setenv("CQ_DEBUG", "")
	t.Setenv("NO_COLOR", "1")
	t.Chdir(env.dir)

	oldIn, oldOut := stdinIsTerminal, stdoutIsTerminal
	stdinIsTerminal = func() bool { return false }
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		stdinIsTerminal, stdoutIsTerminal = oldIn, oldOut
	})
	return env
}

// run executes cq with args and returns the exit code, stdout and stderr.
func (e *testEnv) run(args ...string) (int, string, string) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	code := executeWith(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// mustRun fails the test unless cq exits 0.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	code, out, errOut := e.run(args...)
	require.Equal(e.t, 0, code, "cq %v\nstdout: %s\nstderr: %s", args, out, errOut)
	return out
}

// runJSON executes cq --json and decodes the envelope.
func (e *testEnv) runJSON(args ...string) (int, JSONEnvelope) {
	e.t.Helper()
	code, out, _ := e.run(append([]string{"--json"}, args...)...)
	var env JSONEnvelope
	require.NoError(e.t, json.Unmarshal([]byte(out), &env), "output: %s", out)
	return code, env
}

func mkdirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
