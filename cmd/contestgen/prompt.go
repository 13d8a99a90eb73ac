package main

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"
)

// errAborted is returned when the user interrupts a prompt.
var errAborted = stderrors.New("aborted")

// prompter asks the user questions. The survey implementation needs a
// terminal; tests substitute their own.
type prompter interface {
	MultiSelect(ctx context.Context, message string, options, defaults []string) ([]string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) MultiSelect(ctx context.Context, message string, options, defaults []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	prompt := &survey.MultiSelect{
		Message: message,
		Options: options,
		Default: defaults,
		Help:    "Space toggles a language, enter confirms",
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(survey.MinItems(1))); err != nil {
		if stderrors.Is(err, terminal.InterruptErr) {
			return nil, errAborted
		}
		return nil, err
	}
	return out, nil
}

var (
	newPrompter   = func() prompter { return surveyPrompter{} }
	isInteractive = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) }
)
