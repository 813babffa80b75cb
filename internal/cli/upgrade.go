package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/project"
	"github.com/company/gopm/internal/resolver"
	"github.com/company/gopm/internal/ui"
)

func (a *App) newUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "upgrade",
		Aliases: []string{"s"},
		Short:   "Upgrade all packages to the latest commit of their default branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpgrade(cmd.Context())
		},
	}
}

func (a *App) runUpgrade(ctx context.Context) error {
	return a.withScratch(ctx, func(scratch string) error {
		p, err := a.newProject(scratch, nil)
		if err != nil {
			return err
		}

		var results []project.UpgradeResult
		err = ui.WithSpinner(ctx, "Upgrading packages...", func(ctx context.Context) error {
			var upgradeErr error
			results, upgradeErr = p.Upgrade(ctx)
			return upgradeErr
		})

		var notFound *project.NotFoundError
		if errors.As(err, &notFound) {
			a.showInstallHelp()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var trees []*resolver.Node
		for _, r := range results {
			if r.UpToDate {
				a.output.Println("%s is up-to-date.", r.Dependency.Name())
				continue
			}
			a.output.Println("Upgrading %s from %s to %s", r.Dependency.Name(), r.From, r.To)
			if r.Tree != nil && r.Tree.Err == nil {
				a.renderTree(r.Tree)
				trees = append(trees, r.Tree)
			}
		}
		if err != nil {
			return err
		}
		return a.nestedFailures(trees...)
	})
}
