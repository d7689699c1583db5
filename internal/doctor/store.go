package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rileyhilliard/cq/internal/lock"
	"github.com/rileyhilliard/cq/internal/store"
)

// StoreDirCheck verifies the store directory is usable.
type StoreDirCheck struct {
	Dir string
}

func (c *StoreDirCheck) Name() string     { return "store_dir" }
func (c *StoreDirCheck) Category() string { return CategoryStore }

func (c *StoreDirCheck) Run() CheckResult {
	return dirResult(c.Name(), c.Dir, "Store", "Set 'store_dir' in .cq.yaml to a writable directory")
}

func (c *StoreDirCheck) Fix() error {
	for _, sub := range []string{store.TemplatesDir, store.PresetsDir, store.SequencesDir} {
		if err := os.MkdirAll(filepath.Join(c.Dir, sub), 0755); err != nil {
			return err
		}
	}
	return nil
}

// StoreLockCheck looks for locks left behind by a crashed writer.
type StoreLockCheck struct {
	Dir string
}

func (c *StoreLockCheck) Name() string     { return "store_locks" }
func (c *StoreLockCheck) Category() string { return CategoryStore }

func (c *StoreLockCheck) held() []string {
	var held []string
	for _, sub := range []string{store.TemplatesDir, store.PresetsDir, store.SequencesDir} {
		if _, err := os.Stat(lock.Path(filepath.Join(c.Dir, sub))); err == nil {
			held = append(held, sub)
		}
	}
	return held
}

func (c *StoreLockCheck) Run() CheckResult {
	held := c.held()
	if len(held) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No store locks held",
		}
	}

	holders := make([]string, len(held))
	for i, sub := range held {
		holders[i] = fmt.Sprintf("%s (%s)", sub, lock.Holder(filepath.Join(c.Dir, sub)))
	}
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    "Locked: " + strings.Join(holders, ", "),
		Suggestion: "If no other cq is running, run 'cq unlock' or 'cq doctor --fix'",
		Fixable:    true,
	}
}

func (c *StoreLockCheck) Fix() error {
	for _, sub := range c.held() {
		if err := lock.ForceRelease(filepath.Join(c.Dir, sub)); err != nil {
			return err
		}
	}
	return nil
}

// StoreReferencesCheck finds presets and sequences that name templates
// which no longer exist.
type StoreReferencesCheck struct {
	Store *store.Store
}

func (c *StoreReferencesCheck) Name() string     { return "store_references" }
func (c *StoreReferencesCheck) Category() string { return CategoryStore }

func (c *StoreReferencesCheck) Run() CheckResult {
	templates, err := c.Store.Templates.List()
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Can't read templates: %s", firstLine(err)),
		}
	}
	presets, err := c.Store.Presets.List()
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Can't read presets: %s", firstLine(err)),
		}
	}
	sequences, err := c.Store.Sequences.List()
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Can't read sequences: %s", firstLine(err)),
		}
	}

	var broken []string
	for _, p := range presets {
		if p.Template != "" && !c.Store.Templates.Exists(p.Template) {
			broken = append(broken, fmt.Sprintf("preset '%s' -> %s", p.Name, p.Template))
		}
	}
	for _, s := range sequences {
		for _, t := range s.Templates {
			if !c.Store.Templates.Exists(t) {
				broken = append(broken, fmt.Sprintf("sequence '%s' -> %s", s.Name, t))
			}
		}
	}
	sort.Strings(broken)

	if len(broken) > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Missing templates: " + strings.Join(broken, "; "),
			Suggestion: "Add the templates back, or update the presets and sequences that use them",
		}
	}

	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("%d template%s, %d preset%s, %d sequence%s",
			len(templates), pluralize(len(templates)),
			len(presets), pluralize(len(presets)),
			len(sequences), pluralize(len(sequences))),
	}
}

func (c *StoreReferencesCheck) Fix() error {
	return nil
}

// NewStoreChecks creates all store-related checks.
func NewStoreChecks(s *store.Store) []Check {
	return []Check{
		&StoreDirCheck{Dir: s.Dir},
		&StoreLockCheck{Dir: s.Dir},
		&StoreReferencesCheck{Store: s},
	}
}

// dirResult checks that dir is a writable directory. A missing directory
// is a fixable warning since cq creates it on first use.
func dirResult(name, dir, what, suggestion string) CheckResult {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return CheckResult{
			Name:       name,
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s directory doesn't exist yet: %s", what, dir),
			Suggestion: "It is created on first use, or now with 'cq doctor --fix'",
			Fixable:    true,
		}
	case err != nil:
		return CheckResult{
			Name:       name,
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't access %s: %v", dir, err),
			Suggestion: suggestion,
		}
	case !info.IsDir():
		return CheckResult{
			Name:       name,
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is not a directory", dir),
			Suggestion: suggestion,
		}
	}

	probe, err := os.CreateTemp(dir, ".cq-doctor-*")
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s directory isn't writable: %s", what, dir),
			Suggestion: suggestion,
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return CheckResult{
		Name:    name,
		Status:  StatusPass,
		Message: fmt.Sprintf("%s directory: %s", what, dir),
	}
}
