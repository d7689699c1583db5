package store

import (
	"path/filepath"

	"github.com/rileyhilliard/cq/internal/config"
	"github.com/rileyhilliard/cq/internal/logger"
	"github.com/rileyhilliard/cq/internal/template"
)

// Subdirectories of the store directory.
const (
	TemplatesDir = "templates"
	PresetsDir   = "presets"
	SequencesDir = "sequences"
)

// Store groups the three repositories under one directory.
type Store struct {
	Dir       string
	Templates *Repo[template.Template]
	Presets   *Repo[Preset]
	Sequences *Repo[Sequence]
}

// Open returns a store rooted at dir. Nothing is created until the first write.
func Open(dir string, log logger.Logger) *Store {
	dir = config.ExpandPath(dir)
	return &Store{
		Dir:       dir,
		Templates: NewRepo(filepath.Join(dir, TemplatesDir), "template", renameTemplate, log),
		Presets:   NewRepo(filepath.Join(dir, PresetsDir), "preset", renamePreset, log),
		Sequences: NewRepo(filepath.Join(dir, SequencesDir), "sequence", renameSequence, log),
	}
}
