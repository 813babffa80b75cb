package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/company/gopm/internal/project"
	"github.com/company/gopm/internal/search"
)

// IsCI returns true if running in a CI environment.
// gitlab-ci-local sets GITLAB_CI=false, which should not be treated as CI.
func IsCI() bool {
	return isTruthy(os.Getenv("CI")) ||
		isTruthy(os.Getenv("GOPM_CI")) ||
		isTruthy(os.Getenv("GITHUB_ACTIONS")) ||
		isTruthy(os.Getenv("GITLAB_CI"))
}

func isTruthy(v string) bool {
	return v != "" && v != "false" && v != "0"
}

// ResultLabel formats a search result the way it is listed to the user.
func ResultLabel(i int, r search.Result) string {
	label := fmt.Sprintf("[%d] %s", i+1, r.Name)
	if r.Description != "" {
		label += " - " + r.Description
	}
	return label
}

// SelectResult prompts the user to pick one search result and returns its index.
func SelectResult(results []search.Result) (int, error) {
	options := make([]huh.Option[int], 0, len(results))
	for i, r := range results {
		options = append(options, huh.NewOption(ResultLabel(i, r), i))
	}

	selected := -1
	err := huh.NewSelect[int]().
		Title("Package to install").
		Options(options...).
		Value(&selected).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return -1, project.ErrNoSelection
	}
	if err != nil {
		return -1, err
	}
	if selected < 0 {
		return -1, project.ErrNoSelection
	}
	return selected, nil
}

// Confirm prompts the user for a yes/no confirmation.
func Confirm(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return confirmed, err
}

// Prompter asks questions through interactive terminal forms.
type Prompter struct{}

var _ project.Prompter = Prompter{}

// SelectResult implements project.Prompter.
func (Prompter) SelectResult(results []search.Result) (int, error) {
	return SelectResult(results)
}

// Confirm implements project.Prompter.
func (Prompter) Confirm(title string) (bool, error) {
	return Confirm(title)
}
