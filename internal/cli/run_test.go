//go:build !windows

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/cq/internal/sessionlog"
)

func newShellEnv(t *testing.T) *testEnv {
	env := newTestEnv(t)
	t.Setenv("CQ_SHELL", "/bin/sh -c")
	return env
}

func TestRun_CompletesQueue(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun("template", "add", "greet", "--text", "First = echo one {COM1}\necho two")

	code, out, errOut := env.run("run", "greet", "--set", "COM1=COM3")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "one COM3")
	assert.Contains(t, out, "two")
	assert.Contains(t, out, "2 commands completed")

	// Output lands in today's session log.
	data, err := os.ReadFile(filepath.Join(env.logs, time.Now().Format(sessionlog.DayLayout)+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "one COM3")
}

func TestRun_StopOnError(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun("template", "add", "broken", "--text", "echo before\nexit 3\necho after-the-failure")

	code, out, _ := env.run("run", "broken")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "Stopped on error")
	assert.NotContains(t, out, "after-the-failure")

	code, out, _ = env.run("run", "broken", "--stop-on-error=false")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "after-the-failure")
	assert.Contains(t, out, "1 of 3 commands failed")
}

func TestRun_PresetSuppliesTemplateAndValues(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun("template", "add", "flash", "--text", "echo flashing {COM1} as {username}")
	env.mustRun("preset", "save", "bench", "--set", "COM1=COM7", "--set", "username=tech1", "--template", "flash")

	out := env.mustRun("run", "--preset", "bench")
	assert.Contains(t, out, "flashing COM7 as tech1")

	// --set beats the preset.
	out = env.mustRun("run", "--preset", "bench", "--set", "COM1=COM9")
	assert.Contains(t, out, "flashing COM9 as tech1")

	code, _, errOut := env.run("run")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "No template given")
}

func TestRun_WorkingDirectory(t *testing.T) {
	env := newShellEnv(t)
	wd := t.TempDir()
	env.mustRun("template", "add", "where", "--text", "pwd\necho {wd}")

	out := env.mustRun("run", "where", "--wd", wd)
	resolved, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, wd) || strings.Contains(out, resolved), out)

	code, _, errOut := env.run("run", "where", "--wd", filepath.Join(wd, "missing"))
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)
}

func TestRun_JSONReport(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun("template", "add", "pair", "--text", "echo alpha\necho beta >&2")

	code, out, _ := env.run("--json", "run", "pair")
	require.Equal(t, 0, code)

	var payload struct {
		Success bool      `json:"success"`
		Data    runReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
	assert.True(t, payload.Success)
	assert.Equal(t, "pair", payload.Data.Name)
	assert.True(t, payload.Data.Success)
	require.Len(t, payload.Data.Items, 2)
	assert.Equal(t, 0, payload.Data.Items[1].ExitCode)

	var streams []string
	for _, l := range payload.Data.Output {
		if l.Text == "alpha" || l.Text == "beta" {
			streams = append(streams, l.Stream+":"+l.Text)
		}
	}
	assert.Contains(t, streams, "stdout:alpha")
	assert.Contains(t, streams, "stderr:beta")
}

func TestRun_Timeout(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun("template", "add", "slow", "--text", "sleep 5\necho never-reached")

	start := time.Now()
	code, out, _ := env.run("run", "slow", "--timeout", "200ms")
	assert.Equal(t, exitCancelled, code)
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Contains(t, out, "Timed out after 200ms")
	assert.NotContains(t, out, "never-reached")
}

func TestExec_ReturnsChildExitCode(t *testing.T) {
	env := newShellEnv(t)

	code, out, _ := env.run("exec", "--set", "COM1=COM4", "--", "echo port {COM1}")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "port COM4")

	code, _, _ = env.run("exec", "--", "exit 7")
	assert.Equal(t, 7, code)
}

func TestExec_DetailedMasksPassword(t *testing.T) {
	env := newShellEnv(t)
	t.Setenv("CQ_BINDINGS_PASSWORD", "hunter2")

	code, out, _ := env.run("exec", "--detailed", "--", "true {password}")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "> true ********")
	assert.Contains(t, out, "[exit 0]")
	assert.NotContains(t, out, "hunter2")
}

func TestSequenceRun(t *testing.T) {
	env := newShellEnv(t)
	env.mustRun("template", "add", "login", "--text", "echo login {username}")
	env.mustRun("template", "add", "flash", "--text", "echo flash {COM1}\necho verify")
	env.mustRun("sequence", "save", "full", "login", "flash")

	out := env.mustRun("sequence", "run", "full", "--set", "username=tech1", "--set", "COM1=COM2")
	assert.Contains(t, out, "login tech1")
	assert.Contains(t, out, "flash COM2")
	assert.Contains(t, out, "3 commands completed")
}

func TestWhich(t *testing.T) {
	env := newShellEnv(t)

	out := env.mustRun("which", "sh")
	assert.Contains(t, out, "sh")

	code, _, errOut := env.run("which", "definitely-not-a-real-program-xyz")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not found")

	code, payload := env.runJSON("which", "definitely-not-a-real-program-xyz")
	assert.Equal(t, 1, code)
	assert.Equal(t, ErrCodeNotFound, payload.Error.Code)
}
