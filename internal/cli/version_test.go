package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dev", "dev"},
		{"", ""},
		{"1.2.0", "v1.2.0"},
		{"v1.2.0", "v1.2.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in), tt.in)
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	oldVersion, oldCommit, oldDate := version, commit, date
	t.Cleanup(func() { SetVersionInfo(oldVersion, oldCommit, oldDate) })
	SetVersionInfo("1.4.0", "abc123", "2026-01-02")

	out := env.mustRun("version", "--short")
	assert.Equal(t, "1.4.0\n", out)

	out = env.mustRun("version")
	assert.Contains(t, out, "cq v1.4.0")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built: 2026-01-02")
	assert.Contains(t, out, runtime.Version())

	code, payload := env.runJSON("version")
	require.Equal(t, 0, code)
	assert.Equal(t, "1.4.0", payload.Data.(map[string]any)["version"])
}
