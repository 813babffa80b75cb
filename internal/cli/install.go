package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/project"
)

func (a *App) newInstallCmd() *cobra.Command {
	var pick int

	cmd := &cobra.Command{
		Use:     "install <search term or path>...",
		Aliases: []string{"i"},
		Short:   "Install a package from a git repository or a search",
		Long: "Installs a package from a local git repository, or searches the configured\n" +
			"providers and installs the chosen result. Its addons and the addons of its\n" +
			"dependencies are copied into the project's addons directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd.Context(), strings.Join(args, " "), pick)
		},
	}

	cmd.Flags().IntVar(&pick, "pick", 0, "install the Nth search result without prompting")
	return cmd
}

func (a *App) runInstall(ctx context.Context, term string, pick int) error {
	return a.withScratch(ctx, func(scratch string) error {
		p, err := a.newProject(scratch, autoPrompter{pick: pick, ci: a.isCI(), next: a.prompter})
		if err != nil {
			return err
		}

		res, err := p.Install(ctx, term)
		var notFound *project.NotFoundError
		switch {
		case errors.As(err, &notFound):
			a.output.Info("No packages found")
			return nil
		case errors.Is(err, project.ErrNoSelection):
			a.output.Info("No package selected")
			return nil
		case err != nil:
			return err
		}

		a.renderTree(res.Tree)
		a.output.Success("Installed %s", res.Dependency.Name())
		return a.nestedFailures(res.Tree)
	})
}
