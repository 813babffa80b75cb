package cli

import (
	"fmt"

	"github.com/company/gopm/internal/exitcodes"
	"github.com/company/gopm/internal/project"
	"github.com/company/gopm/internal/search"
)

// autoPrompter answers from flags when given and refuses to prompt in CI.
type autoPrompter struct {
	pick int
	yes  bool
	ci   bool
	next project.Prompter
}

func (p autoPrompter) SelectResult(results []search.Result) (int, error) {
	if p.pick > 0 {
		if p.pick > len(results) {
			return -1, &ExitError{
				Code:    exitcodes.UsageError,
				Message: fmt.Sprintf("--pick %d is out of range, found %d packages", p.pick, len(results)),
			}
		}
		return p.pick - 1, nil
	}
	if p.ci {
		return -1, &ExitError{Code: exitcodes.UsageError, Message: "cannot choose a package in CI; use --pick"}
	}
	if p.next == nil {
		return -1, project.ErrNoSelection
	}
	return p.next.SelectResult(results)
}

func (p autoPrompter) Confirm(title string) (bool, error) {
	if p.yes {
		return true, nil
	}
	if p.ci {
		return false, &ExitError{Code: exitcodes.UsageError, Message: "cannot confirm in CI; use --yes"}
	}
	if p.next == nil {
		return false, nil
	}
	return p.next.Confirm(title)
}
