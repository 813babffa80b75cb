package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/search"
	"github.com/company/gopm/internal/ui"
)

func (a *App) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>...",
		Short: "Search the configured providers for packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func (a *App) runSearch(ctx context.Context, term string) error {
	p, err := a.newProject("", nil)
	if err != nil {
		return err
	}

	var results []search.Result
	err = ui.WithSpinner(ctx, "Searching...", func(ctx context.Context) error {
		var searchErr error
		results, searchErr = p.Search(ctx, term)
		return searchErr
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		a.output.Info("No packages found")
		return nil
	}

	for i, r := range results {
		a.output.Println("%s", ui.ResultLabel(i, r))
		a.output.Println("\t%s (%s, %s)", r.CloneURL, r.Provider, r.DefaultVersion)
	}
	return nil
}
