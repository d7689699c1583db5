package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/logger"
	"github.com/rileyhilliard/cq/internal/template"
)

func newTemplates(t *testing.T) (*Repo[template.Template], *logger.BufferLogger) {
	t.Helper()
	buf := logger.NewBufferLogger()
	return NewRepo(t.TempDir(), "template", renameTemplate, buf), buf
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Flash meter", "Flash meter"},
		{"a/b\\c:d", "a_b_c_d"},
		{`what? "now" <x>|*`, "what_ _now_ _x___"},
		{"  lots   of   space  ", "lots of space"},
		{"trailing dots...", "trailing dots"},
		{"tab\there", "tab_here"},
		{"", "untitled"},
		{"...", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFileName(tt.in))
		})
	}
}

func TestRepo_SaveGetList(t *testing.T) {
	repo, _ := newTemplates(t)

	require.NoError(t, repo.Save(template.Template{Name: "zeta", Text: "echo z"}))
	require.NoError(t, repo.Save(template.Template{Name: "Alpha", Text: "echo a\necho b", Description: "two lines"}))
	require.NoError(t, repo.Save(template.Template{Name: "beta", Text: "echo b"}))

	names, err := repo.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, names)

	got, err := repo.Get("ALPHA")
	require.NoError(t, err)
	assert.Equal(t, "echo a\necho b", got.Text)
	assert.Equal(t, "two lines", got.Description)
	assert.FileExists(t, filepath.Join(repo.Dir(), "Alpha.yaml"))

	assert.True(t, repo.Exists(" beta "))
	assert.False(t, repo.Exists("gamma"))
}

func TestRepo_SaveReplacesSameNameAnyCase(t *testing.T) {
	repo, _ := newTemplates(t)

	require.NoError(t, repo.Save(template.Template{Name: "flash", Text: "v1"}))
	require.NoError(t, repo.Save(template.Template{Name: "Flash", Text: "v2"}))

	all, err := repo.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Flash", all[0].Name)
	assert.Equal(t, "v2", all[0].Text)
}

func TestRepo_SaveRejectsEmptyName(t *testing.T) {
	repo, _ := newTemplates(t)
	err := repo.Save(template.Template{Name: "  ", Text: "x"})
	assert.True(t, errors.IsCode(err, errors.ErrStore))
}

func TestRepo_FileNameCollision(t *testing.T) {
	repo, _ := newTemplates(t)

	require.NoError(t, repo.Save(template.Template{Name: "a/b", Text: "x"}))
	err := repo.Save(template.Template{Name: "a:b", Text: "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestRepo_GetMissing(t *testing.T) {
	repo, _ := newTemplates(t)
	require.NoError(t, repo.Save(template.Template{Name: "known", Text: "x"}))

	_, err := repo.Get("unknown")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Available: known")
}

func TestRepo_ListMissingDir(t *testing.T) {
	repo := NewRepo(filepath.Join(t.TempDir(), "nope"), "template", renameTemplate, logger.Noop())

	all, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRepo_SkipsMalformedFiles(t *testing.T) {
	repo, buf := newTemplates(t)
	require.NoError(t, repo.Save(template.Template{Name: "good", Text: "x"}))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "bad.yaml"), []byte("name: [unclosed"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "nameless.yaml"), []byte("template: echo hi\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "notes.txt"), []byte("ignored"), 0644))

	names, err := repo.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, names)
	assert.True(t, buf.HasLevel("warn"))
}

func TestRepo_Delete(t *testing.T) {
	repo, _ := newTemplates(t)
	require.NoError(t, repo.Save(template.Template{Name: "Flash", Text: "x"}))

	require.NoError(t, repo.Delete("flash"))
	assert.False(t, repo.Exists("Flash"))
	assert.NoFileExists(t, filepath.Join(repo.Dir(), "Flash.yaml"))

	assert.True(t, IsNotFound(repo.Delete("flash")))
}

func TestRepo_Rename(t *testing.T) {
	repo, _ := newTemplates(t)
	require.NoError(t, repo.Save(template.Template{Name: "old", Text: "echo x", Description: "d"}))

	require.NoError(t, repo.Rename("OLD", "new name"))

	assert.False(t, repo.Exists("old"))
	assert.NoFileExists(t, filepath.Join(repo.Dir(), "old.yaml"))
	got, err := repo.Get("new name")
	require.NoError(t, err)
	assert.Equal(t, "echo x", got.Text)
	assert.Equal(t, "d", got.Description)
}

func TestRepo_RenameCaseOnly(t *testing.T) {
	repo, _ := newTemplates(t)
	require.NoError(t, repo.Save(template.Template{Name: "flash", Text: "x"}))

	require.NoError(t, repo.Rename("flash", "Flash"))

	all, err := repo.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Flash", all[0].Name)
}

func TestRepo_RenameConflicts(t *testing.T) {
	repo, _ := newTemplates(t)
	require.NoError(t, repo.Save(template.Template{Name: "one", Text: "1"}))
	require.NoError(t, repo.Save(template.Template{Name: "two", Text: "2"}))

	err := repo.Rename("one", "TWO")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.True(t, IsNotFound(repo.Rename("missing", "three")))
	assert.Error(t, repo.Rename("one", ""))

	got, err := repo.Get("one")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Text)
}

func TestRepo_NoTempFilesLeftBehind(t *testing.T) {
	repo, _ := newTemplates(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(template.Template{Name: "t", Text: "x"}))
	}

	entries, err := os.ReadDir(repo.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t.yaml", entries[0].Name())
}
