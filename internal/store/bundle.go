package store

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/template"
)

// BundleVersion is written into every export.
const BundleVersion = 1

// Bundle is the single-document export format.
type Bundle struct {
	Version   int                 `yaml:"version"`
	Templates []template.Template `yaml:"templates,omitempty"`
	Presets   []Preset            `yaml:"presets,omitempty"`
	Sequences []Sequence          `yaml:"sequences,omitempty"`
}

// ExportOptions selects what goes into an export. The zero value exports
// everything.
type ExportOptions struct {
	TemplatesOnly bool
}

// Export writes the store's contents as one YAML document. Preset
// passwords are never part of the output.
func (s *Store) Export(w io.Writer, opts ExportOptions) (*Bundle, error) {
	b := &Bundle{Version: BundleVersion}

	var err error
	if b.Templates, err = s.Templates.List(); err != nil {
		return nil, err
	}
	if !opts.TemplatesOnly {
		if b.Presets, err = s.Presets.List(); err != nil {
			return nil, err
		}
		if b.Sequences, err = s.Sequences.List(); err != nil {
			return nil, err
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Can't write export",
			"Check the output path.")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore, "Can't write export", "Check the output path.")
	}
	return b, nil
}

// ImportReport counts what an import did.
type ImportReport struct {
	Added    []string
	Replaced []string
	Skipped  []string
}

// Total returns the number of entries written.
func (r ImportReport) Total() int {
	return len(r.Added) + len(r.Replaced)
}

// Import reads a bundle and saves its entries. Existing entries are kept
// unless overwrite is set.
func (s *Store) Import(r io.Reader, overwrite bool) (*ImportReport, error) {
	var b Bundle
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		if err == io.EOF {
			return &ImportReport{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Can't parse import file",
			"Import files are produced by 'cq template export'.")
	}
	if b.Version > BundleVersion {
		return nil, errors.New(errors.ErrStore,
			fmt.Sprintf("Import file is version %d, but cq only knows up to %d", b.Version, BundleVersion),
			"Upgrade cq to a newer release.")
	}

	report := &ImportReport{}
	for _, t := range b.Templates {
		if err := importOne(s.Templates, t, "template", overwrite, report); err != nil {
			return report, err
		}
	}
	for _, p := range b.Presets {
		p.Values.Password = ""
		if err := importOne(s.Presets, p, "preset", overwrite, report); err != nil {
			return report, err
		}
	}
	for _, q := range b.Sequences {
		if err := importOne(s.Sequences, q, "sequence", overwrite, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func importOne[T Named](repo *Repo[T], v T, kind string, overwrite bool, report *ImportReport) error {
	label := kind + " " + v.GetName()
	exists := repo.Exists(v.GetName())
	if exists && !overwrite {
		report.Skipped = append(report.Skipped, label)
		return nil
	}
	if err := repo.Save(v); err != nil {
		return err
	}
	if exists {
		report.Replaced = append(report.Replaced, label)
	} else {
		report.Added = append(report.Added, label)
	}
	return nil
}
