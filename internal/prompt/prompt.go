// Package prompt asks the user to pick among registered templates when the
// CLI runs on a terminal without --template.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts the prompt.
var ErrAborted = errors.New("prompt: aborted")

// Picker selects one option.
type Picker interface {
	Pick(ctx context.Context, message string, options []string) (string, error)
}

// PickerFunc adapts a function into a Picker.
type PickerFunc func(ctx context.Context, message string, options []string) (string, error)

// Pick delegates to the underlying function.
func (fn PickerFunc) Pick(ctx context.Context, message string, options []string) (string, error) {
	return fn(ctx, message, options)
}

// Survey returns a Picker backed by survey's select prompt.
func Survey() Picker {
	return surveyPicker{}
}

type surveyPicker struct{}

func (surveyPicker) Pick(ctx context.Context, message string, options []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(options) == 0 {
		return "", fmt.Errorf("prompt: nothing to choose from")
	}
	var out string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return out, nil
}
