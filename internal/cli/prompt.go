package cli

import (
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hekate/internal/validation"
)

// promptFunc runs an interactive form; tests replace it.
var promptFunc = func(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

// ask prompts for every empty value. Fields already set by flags are left
// alone so the commands stay scriptable.
func ask(inputs ...*huh.Input) error {
	var fields []huh.Field
	for _, in := range inputs {
		if in != nil {
			fields = append(fields, in)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return promptFunc(fields...)
}

func textInput(title string, value *string, validate func(string) error) *huh.Input {
	if *value != "" {
		return nil
	}
	in := huh.NewInput().Title(title).Value(value)
	if validate != nil {
		in = in.Validate(validate)
	}
	return in
}

func passwordInput(title string, value *string, validate func(string) error) *huh.Input {
	in := textInput(title, value, validate)
	if in == nil {
		return nil
	}
	return in.EchoMode(huh.EchoModePassword)
}

func emailInput(value *string) *huh.Input {
	return textInput("Correo electrónico", value, validation.Email)
}
