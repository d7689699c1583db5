package store

import (
	"github.com/rileyhilliard/cq/internal/template"
)

// Preset is a named set of operator inputs. The password is never written
// to disk; it is supplied at run time from the environment or a prompt.
type Preset struct {
	Name       string          `yaml:"name" json:"name"`
	Values     template.Values `yaml:",inline" json:"values"`
	Template   string          `yaml:"template,omitempty" json:"template,omitempty"`
	WorkingDir string          `yaml:"working_dir,omitempty" json:"working_dir,omitempty"`
}

// GetName implements Named.
func (p Preset) GetName() string { return p.Name }

// Bindings returns the preset's values as a binding set. A preset working
// directory fills the wd token when the preset doesn't set one itself.
func (p Preset) Bindings() template.Bindings {
	v := p.Values
	if v.WorkDir == "" {
		v.WorkDir = p.WorkingDir
	}
	return v.Bindings()
}

func renamePreset(p Preset, name string) Preset {
	p.Name = name
	return p
}
