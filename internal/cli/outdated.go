package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/project"
	"github.com/company/gopm/internal/ui"
)

func (a *App) newOutdatedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outdated",
		Short: "Show outdated packages",
		Long:  "Compare pinned versions against the tip of each package's default branch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOutdated(cmd.Context())
		},
	}
}

func (a *App) runOutdated(ctx context.Context) error {
	return a.withScratch(ctx, func(scratch string) error {
		p, err := a.newProject(scratch, nil)
		if err != nil {
			return err
		}

		var results []project.UpgradeResult
		err = ui.WithSpinner(ctx, "Checking for updates...", func(ctx context.Context) error {
			var checkErr error
			results, checkErr = p.Outdated(ctx)
			return checkErr
		})
		var notFound *project.NotFoundError
		if errors.As(err, &notFound) {
			a.showInstallHelp()
			return nil
		}
		if err != nil {
			return err
		}

		headers := []string{"Package", "Pinned", "Latest", "Status"}
		var rows [][]string
		hasOutdated := false
		for _, r := range results {
			status := "up to date"
			if !r.UpToDate {
				status = "update available"
				hasOutdated = true
			}
			rows = append(rows, []string{r.Dependency.Name(), ui.ShortVersion(r.From), ui.ShortVersion(r.To), status})
		}

		a.output.Table(headers, rows)

		if !hasOutdated {
			fmt.Fprintln(a.output.Writer())
			a.output.Success("All packages are up to date")
		}
		return nil
	})
}
