package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/project"
)

func (a *App) newRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <package>",
		Aliases: []string{"r"},
		Short:   "Remove a package from the manifest",
		Long: "Removes the manifest entry whose name contains the given word. Addons that\n" +
			"were already copied into the project are left in place.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRemove(cmd.Context(), args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "remove without asking for confirmation")
	return cmd
}

func (a *App) runRemove(ctx context.Context, query string, yes bool) error {
	p, err := a.newProject("", autoPrompter{yes: yes, ci: a.isCI(), next: a.prompter})
	if err != nil {
		return err
	}

	removed, err := p.Remove(ctx, query)
	var notFound *project.NotFoundError
	switch {
	case errors.As(err, &notFound):
		a.output.Info("No package installed that contains the word %q", query)
		return nil
	case errors.Is(err, project.ErrCancelled):
		a.output.Info("Nothing removed")
		return nil
	case err != nil:
		return err
	}

	a.output.Success("Removed %s", removed.Name())
	return nil
}
