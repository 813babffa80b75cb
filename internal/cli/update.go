package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/project"
	"github.com/company/gopm/internal/resolver"
	"github.com/company/gopm/internal/ui"
)

func (a *App) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update",
		Aliases: []string{"u"},
		Short:   "Download all packages listed in the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpdate(cmd.Context())
		},
	}
}

func (a *App) runUpdate(ctx context.Context) error {
	return a.withScratch(ctx, func(scratch string) error {
		p, err := a.newProject(scratch, nil)
		if err != nil {
			return err
		}

		var trees []*resolver.Node
		err = ui.WithSpinner(ctx, "Resolving packages...", func(ctx context.Context) error {
			var updateErr error
			trees, updateErr = p.Update(ctx)
			return updateErr
		})

		var notFound *project.NotFoundError
		if errors.As(err, &notFound) {
			a.showInstallHelp()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		for _, t := range trees {
			if t.Err == nil {
				a.renderTree(t)
			}
		}
		if err != nil {
			return err
		}
		return a.nestedFailures(trees...)
	})
}
