package cli

import (
	"fmt"

	"github.com/company/gopm/internal/exitcodes"
	"github.com/company/gopm/internal/resolver"
	"github.com/company/gopm/internal/ui"
)

func (a *App) renderTree(n *resolver.Node) {
	if n == nil {
		return
	}
	ui.RenderTree(a.output.Writer(), n, a.output.NoColor())
}

// nestedFailures returns an error when dependencies below the given trees could
// not be resolved. Their siblings were still installed.
func (a *App) nestedFailures(trees ...*resolver.Node) error {
	failed := 0
	for _, t := range trees {
		if t != nil {
			failed += len(t.Failures())
		}
	}
	if failed == 0 {
		return nil
	}
	return &ExitError{
		Code:    exitcodes.VCSError,
		Message: fmt.Sprintf("%d nested dependencies could not be resolved", failed),
	}
}
