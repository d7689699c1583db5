package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestWriteDefault(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false), "refuses to overwrite")
	assert.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
	assert.Equal(t, "credentials", cfg.Tokens.FieldAliases)
	assert.True(t, cfg.Run.StopOnError)
}

func TestSetValue_PreservesComments(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, writeFile(path, `# my settings
run:
  stop_on_error: true # keep going? no
bindings:
  username: old
`))

	require.NoError(t, SetValue(path, "bindings.username", "tech2"))
	require.NoError(t, SetValue(path, "run.stop_on_error", "false"))
	require.NoError(t, SetValue(path, "output.color", "never"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# my settings")
	assert.Contains(t, string(data), "# keep going? no")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tech2", cfg.Bindings.Username)
	assert.False(t, cfg.Run.StopOnError)
	assert.Equal(t, ColorNever, cfg.Output.Color)
}

func TestSetValue_EmptyFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, writeFile(path, ""))

	require.NoError(t, SetValue(path, "logs.keep_days", "5"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Logs.KeepDays)
}

func TestSetValue_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, writeFile(path, "version: 1\n"))

	assert.Error(t, SetValue(path, "bindings.password", "secret"), "password is never persisted")
	assert.Error(t, SetValue(path, "nonsense", "x"))

	require.NoError(t, writeFile(path, "run: 3\n"))
	assert.Error(t, SetValue(path, "run.timeout", "1m"), "run is not a mapping")
}
