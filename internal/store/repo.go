// Package store keeps templates, presets and sequences as one YAML file per
// entry under the store directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/lock"
	"github.com/rileyhilliard/cq/internal/logger"
)

const fileExt = ".yaml"

// Named is anything stored by name.
type Named interface {
	GetName() string
}

// Repo stores values of one kind in a directory. Names are matched
// case-insensitively; file names are derived with SafeFileName.
type Repo[T Named] struct {
	dir     string
	kind    string
	rename  func(T, string) T
	log     logger.Logger
	lockOpt lock.Options
}

// NewRepo creates a repository rooted at dir. kind names the entries in
// messages ("template", "preset"); rename returns a copy with a new name.
func NewRepo[T Named](dir, kind string, rename func(T, string) T, log logger.Logger) *Repo[T] {
	return &Repo[T]{
		dir:     dir,
		kind:    kind,
		rename:  rename,
		log:     logger.OrDefault(log),
		lockOpt: lock.DefaultOptions,
	}
}

// Dir returns the repository directory.
func (r *Repo[T]) Dir() string { return r.dir }

type entry[T Named] struct {
	value T
	path  string
}

// load reads every entry. Malformed or nameless files are skipped with a warning.
func (r *Repo[T]) load() ([]entry[T], error) {
	files, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't read %s directory %s", r.kind, r.dir),
			"Check 'store_dir' in .cq.yaml and your permissions.")
	}

	var out []entry[T]
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), fileExt) {
			continue
		}
		path := filepath.Join(r.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("skipping unreadable %s file %s: %v", r.kind, path, err)
			continue
		}
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			r.log.Warn("skipping malformed %s file %s: %v", r.kind, path, err)
			continue
		}
		if strings.TrimSpace(v.GetName()) == "" {
			r.log.Warn("skipping %s file %s: no name", r.kind, path)
			continue
		}
		out = append(out, entry[T]{value: v, path: path})
	}
	return out, nil
}

func (r *Repo[T]) find(entries []entry[T], name string) (entry[T], bool) {
	for _, e := range entries {
		if sameName(e.value.GetName(), name) {
			return e, true
		}
	}
	return entry[T]{}, false
}

// List returns all entries sorted by name, case-insensitively.
func (r *Repo[T]) List() ([]T, error) {
	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.value)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].GetName()) < strings.ToLower(out[j].GetName())
	})
	return out, nil
}

// Names returns the sorted entry names.
func (r *Repo[T]) Names() ([]string, error) {
	items, err := r.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.GetName()
	}
	return names, nil
}

// Get returns the entry with the given name.
func (r *Repo[T]) Get(name string) (T, error) {
	var zero T
	entries, err := r.load()
	if err != nil {
		return zero, err
	}
	e, ok := r.find(entries, name)
	if !ok {
		return zero, r.notFound(name)
	}
	return e.value, nil
}

// Exists reports whether an entry with the name exists.
func (r *Repo[T]) Exists(name string) bool {
	entries, err := r.load()
	if err != nil {
		return false
	}
	_, ok := r.find(entries, name)
	return ok
}

// Save writes v, replacing any entry with the same name.
func (r *Repo[T]) Save(v T) error {
	if err := validateName(r.kind, v.GetName()); err != nil {
		return err
	}

	l, err := lock.Acquire(r.dir, "save "+r.kind, r.lockOpt)
	if err != nil {
		return err
	}
	defer l.Release()

	entries, err := r.load()
	if err != nil {
		return err
	}
	return r.write(entries, v, "")
}

// write stores v. skip names an entry being renamed away, whose file may be
// reused or removed.
func (r *Repo[T]) write(entries []entry[T], v T, skip string) error {
	target := r.PathFor(v.GetName())

	// Another entry already owns the target file (names that differ only in
	// characters SafeFileName replaces).
	for _, e := range entries {
		if e.path != target || sameName(e.value.GetName(), v.GetName()) {
			continue
		}
		if skip != "" && sameName(e.value.GetName(), skip) {
			continue
		}
		return errors.New(errors.ErrStore,
			fmt.Sprintf("%s name '%s' collides with existing '%s'", capitalize(r.kind), v.GetName(), e.value.GetName()),
			"Pick a name that differs in letters or digits, not just punctuation.")
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't encode %s '%s'", r.kind, v.GetName()),
			"This shouldn't happen - please report this bug!")
	}
	if err := writeFileAtomic(target, data); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't save %s '%s'", r.kind, v.GetName()),
			"Check disk space and permissions on "+r.dir)
	}

	// A same-named entry stored under a different file name (case change).
	if old, ok := r.find(entries, v.GetName()); ok && old.path != target {
		_ = removeStale(old.path, target)
	}
	return nil
}

// Delete removes the named entry.
func (r *Repo[T]) Delete(name string) error {
	l, err := lock.Acquire(r.dir, "delete "+r.kind, r.lockOpt)
	if err != nil {
		return err
	}
	defer l.Release()

	entries, err := r.load()
	if err != nil {
		return err
	}
	e, ok := r.find(entries, name)
	if !ok {
		return r.notFound(name)
	}
	if err := os.Remove(e.path); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't delete %s '%s'", r.kind, name),
			"Check your permissions on "+r.dir)
	}
	return nil
}

// Rename changes an entry's name and moves it to the matching file. The old
// file is removed. Renaming onto another existing entry is refused.
func (r *Repo[T]) Rename(oldName, newName string) error {
	if err := validateName(r.kind, newName); err != nil {
		return err
	}

	l, err := lock.Acquire(r.dir, "rename "+r.kind, r.lockOpt)
	if err != nil {
		return err
	}
	defer l.Release()

	entries, err := r.load()
	if err != nil {
		return err
	}
	old, ok := r.find(entries, oldName)
	if !ok {
		return r.notFound(oldName)
	}
	if !sameName(oldName, newName) {
		if other, exists := r.find(entries, newName); exists {
			return errors.New(errors.ErrStore,
				fmt.Sprintf("A %s named '%s' already exists", r.kind, other.value.GetName()),
				fmt.Sprintf("Delete it first with 'cq %s rm'.", r.kind))
		}
	}

	renamed := r.rename(old.value, strings.TrimSpace(newName))
	if err := r.write(entries, renamed, oldName); err != nil {
		return err
	}
	if target := r.PathFor(renamed.GetName()); old.path != target {
		if err := removeStale(old.path, target); err != nil {
			return errors.WrapWithCode(err, errors.ErrStore,
				"Renamed, but couldn't remove the old file "+old.path,
				"Delete it by hand.")
		}
	}
	return nil
}

// PathFor returns the file an entry with name is stored in.
func (r *Repo[T]) PathFor(name string) string {
	return filepath.Join(r.dir, SafeFileName(name)+fileExt)
}

func (r *Repo[T]) notFound(name string) error {
	suggestion := fmt.Sprintf("Run 'cq %s list' to see what's available.", r.kind)
	if names, err := r.Names(); err == nil && len(names) > 0 {
		suggestion = "Available: " + strings.Join(names, ", ")
	}
	return errors.New(errors.ErrNotFound,
		fmt.Sprintf("No %s named '%s'", r.kind, name),
		suggestion)
}

// IsNotFound reports whether err is a lookup miss from a Repo.
func IsNotFound(err error) bool {
	return errors.IsCode(err, errors.ErrNotFound)
}

// removeStale deletes old unless it is the same file as current, which
// happens on case-insensitive filesystems after a case-only rename.
func removeStale(old, current string) error {
	if oi, err := os.Stat(old); err == nil {
		if ci, err := os.Stat(current); err == nil && os.SameFile(oi, ci) {
			return nil
		}
	}
	err := os.Remove(old)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*"+fileExt+"~")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// validateName rejects blank names.
func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(errors.ErrStore,
			fmt.Sprintf("The %s name is empty", kind),
			"Give it a short descriptive name.")
	}
	return nil
}

// SafeFileName turns a name into a portable file name: characters invalid
// on common filesystems become '_', space runs collapse to one space, and a
// name with nothing left becomes "untitled".
func SafeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	out = strings.TrimRight(out, ". ")
	if out == "" {
		return "untitled"
	}
	return out
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
