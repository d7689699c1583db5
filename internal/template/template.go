package template

import "strings"

// Template is a named command template.
type Template struct {
	// Name identifies the template; compared case-insensitively.
	Name string `yaml:"name"`

	// Description is an optional one-line summary shown in listings.
	Description string `yaml:"description,omitempty"`

	// Text is the command line, or a multi-line body of commands.
	Text string `yaml:"template"`
}

// GetName returns the template name.
func (t Template) GetName() string { return t.Name }

// SameName reports whether two template names refer to the same template.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsQueue reports whether the template body holds more than one runnable line.
func (t Template) IsQueue() bool {
	return len(ParseLines(t.Text)) > 1
}
