package store

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/template"
)

// Sequence is an ordered list of template names run as one queue.
type Sequence struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Templates   []string `yaml:"templates" json:"templates"`
}

// GetName implements Named.
func (s Sequence) GetName() string { return s.Name }

func renameSequence(s Sequence, name string) Sequence {
	s.Name = name
	return s
}

func renameTemplate(t template.Template, name string) template.Template {
	t.Name = name
	return t
}

// ResolveSequence loads the sequence's templates in order. Every missing
// template is reported in a single error.
func (s *Store) ResolveSequence(seq Sequence) ([]template.Template, error) {
	if len(seq.Templates) == 0 {
		return nil, errors.New(errors.ErrTemplate,
			fmt.Sprintf("Sequence '%s' has no templates", seq.Name),
			fmt.Sprintf("Add some with 'cq sequence save %s <template>...'.", seq.Name))
	}

	all, err := s.Templates.List()
	if err != nil {
		return nil, err
	}

	out := make([]template.Template, 0, len(seq.Templates))
	var missing []string
	for _, name := range seq.Templates {
		found := false
		for _, t := range all {
			if template.SameName(t.Name, name) {
				out = append(out, t)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, errors.New(errors.ErrNotFound,
			fmt.Sprintf("Sequence '%s' refers to missing templates: %s", seq.Name, strings.Join(missing, ", ")),
			"Run 'cq template list' and fix the sequence.")
	}
	return out, nil
}

// SequenceQueue builds one queue from all of the sequence's templates, in order.
func (s *Store) SequenceQueue(seq Sequence, e template.Expander, b template.Bindings) ([]template.Item, error) {
	templates, err := s.ResolveSequence(seq)
	if err != nil {
		return nil, err
	}
	var items []template.Item
	for _, t := range templates {
		items = append(items, e.BuildQueue(t.Text, b)...)
	}
	return items, nil
}
