package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrPromptAborted is returned when the operator cancels a prompt.
var ErrPromptAborted = errors.New("prompt aborted")

// PromptField is one value asked for by PromptValues.
type PromptField struct {
	Title  string
	Secret bool
	Value  *string
}

// PromptValues asks for every field in a single form. Secret fields are
// read without echo. Existing values are offered as defaults.
func PromptValues(title string, fields []PromptField) error {
	if len(fields) == 0 {
		return nil
	}

	inputs := make([]huh.Field, 0, len(fields))
	for _, f := range fields {
		in := huh.NewInput().Title(f.Title).Value(f.Value)
		if f.Secret {
			in = in.EchoMode(huh.EchoModePassword)
		}
		inputs = append(inputs, in)
	}

	form := huh.NewForm(huh.NewGroup(inputs...).Title(title))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrPromptAborted
		}
		return err
	}
	return nil
}

// Confirm asks a yes/no question. Aborting counts as no.
func Confirm(title, description string) bool {
	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return confirm
}
