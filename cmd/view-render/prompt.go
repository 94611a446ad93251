package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var errAborted = errors.New("view-render: aborted")

func surveyPicker(ctx context.Context, names []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", errors.New("view-render: manifest declares no views")
	}
	var out string
	prompt := &survey.Select{
		Message: "View to render:",
		Options: names,
		Default: names[0],
	}
	if len(names) > 10 {
		prompt.PageSize = 10
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
