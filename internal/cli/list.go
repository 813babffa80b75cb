package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List the installed packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList()
		},
	}
}

func (a *App) runList() error {
	p, err := a.newProject("", nil)
	if err != nil {
		return err
	}

	deps, err := p.List()
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		a.showInstallHelp()
		return nil
	}

	for _, d := range deps {
		a.output.Println("%s [%s]", d.Name(), d.Version)
	}
	return nil
}
