package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/config"
	"github.com/company/gopm/internal/exitcodes"
	"github.com/company/gopm/internal/filemanager"
	"github.com/company/gopm/internal/logging"
	"github.com/company/gopm/internal/manifest"
	"github.com/company/gopm/internal/project"
	"github.com/company/gopm/internal/search"
	"github.com/company/gopm/internal/ui"
	"github.com/company/gopm/internal/vcs"
)

// App is the dependency container for all CLI commands.
type App struct {
	rootCmd    *cobra.Command
	version    string
	commit     string
	date       string
	config     *config.Config
	env        config.Environment
	output     *ui.Output
	logOut     io.Writer
	getenv     func(string) string
	projectDir string
	verbose    bool
	noColor    bool

	// Overridable collaborators; nil means build from config.
	vcs       vcs.Client
	providers []search.Provider
	prompter  project.Prompter
}

// NewApp creates the root command and registers all subcommands.
func NewApp(version, commit, date string) *App {
	app := &App{
		version:  version,
		commit:   commit,
		date:     date,
		output:   ui.NewOutput(),
		logOut:   os.Stderr,
		getenv:   os.Getenv,
		prompter: ui.Prompter{},
	}

	root := &cobra.Command{
		Use:   "gopm",
		Short: "Dependency manager for Godot projects",
		Long: "Installs Godot addons from git repositories listed in " + manifest.FileName + ",\n" +
			"including the dependencies those repositories declare themselves.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&app.projectDir, "dir", ".", "project directory")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		app.newInstallCmd(),
		app.newUpdateCmd(),
		app.newUpgradeCmd(),
		app.newRemoveCmd(),
		app.newListCmd(),
		app.newOutdatedCmd(),
		app.newSearchCmd(),
		app.newDoctorCmd(),
		app.newVersionCmd(),
	)

	app.rootCmd = root
	return app
}

// setup loads the configuration, applies environment overrides and puts the
// logger into the command context.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.projectDir)
	if err != nil {
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}
	a.env = config.ApplyEnv(cfg, a.getenv)
	if err := config.ValidateConfig(cfg); err != nil {
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}
	a.config = cfg

	if a.noColor || a.env.NoColor {
		a.output.SetNoColor(true)
	}

	level := log.WarnLevel
	if a.verbose || a.env.Debug {
		level = log.DebugLevel
		ui.DisableSpinner(true)
	}
	logger := logging.New(a.logOut, level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, logger))
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context so
// running git processes stop and temporary clones are cleaned up.
func (a *App) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.ExecuteContext(ctx)
}

// ExecuteContext runs the root command with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return toExitError(a.rootCmd.ExecuteContext(ctx))
}

// isCI reports whether prompts must be avoided.
func (a *App) isCI() bool {
	return a.env.CI || ui.IsCI()
}

func (a *App) vcsClient() vcs.Client {
	if a.vcs != nil {
		return a.vcs
	}
	return vcs.NewGit(a.config.Git.Binary)
}

// searchProviders builds the configured providers in order.
func (a *App) searchProviders() []search.Provider {
	if a.providers != nil {
		return a.providers
	}
	s := a.config.Search
	var providers []search.Provider
	for _, name := range s.Providers {
		switch name {
		case config.ProviderGitHub:
			providers = append(providers, search.NewGitHub(
				search.WithBaseURL(s.GitHub.URL),
				search.WithToken(s.GitHub.Token),
				search.WithLanguage(s.GitHub.Language),
				search.WithPerPage(s.GitHub.PerPage),
			))
		case config.ProviderGitLab:
			providers = append(providers, search.NewGitLab(
				search.WithBaseURL(s.GitLab.URL),
				search.WithToken(s.GitLab.Token),
				search.WithPerPage(s.GitLab.PerPage),
			))
		}
	}
	return providers
}

// newProject wires a project for one command invocation.
func (a *App) newProject(scratchDir string, prompter project.Prompter) (*project.Project, error) {
	remover, err := filemanager.NewRemover(a.config.DeleteMode)
	if err != nil {
		return nil, &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}
	if prompter == nil {
		prompter = a.prompter
	}
	return project.New(a.projectDir,
		project.WithVCS(a.vcsClient()),
		project.WithRemover(remover),
		project.WithProviders(a.searchProviders()...),
		project.WithPrompter(prompter),
		project.WithScratchDir(scratchDir),
	), nil
}

// withScratch runs fn with a fresh scratch directory that is removed afterwards.
func (a *App) withScratch(ctx context.Context, fn func(dir string) error) error {
	s, err := filemanager.NewScratch(a.config.ScratchDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logging.FromContext(ctx).Warn("could not remove scratch directory", "err", cerr)
		}
	}()
	return fn(s.Path())
}

func (a *App) showInstallHelp() {
	a.output.Println(`No packages installed. Install them one like this:

    > gopm install search term

    or

    > gopm install /path/to/git/repo
`)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			a.output.Info("gopm %s (commit: %s, built: %s)", a.version, a.commit, a.date)
		},
	}
}

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// toExitError maps domain errors to the message and exit code shown to the user.
func toExitError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var gitErr *vcs.Error
	var collision *project.CollisionError
	var ambiguous *project.AmbiguousError
	var parseErr *manifest.ParseError
	var notFound *project.NotFoundError
	var rateLimit *search.RateLimitError

	switch {
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: exitcodes.GeneralError, Message: "interrupted"}
	case errors.As(err, &gitErr):
		return &ExitError{Code: exitcodes.VCSError, Message: ui.FormatError(gitErr)}
	case errors.As(err, &collision):
		return &ExitError{Code: exitcodes.Conflict, Message: "Package is already installed."}
	case errors.As(err, &ambiguous):
		return &ExitError{
			Code:    exitcodes.UsageError,
			Message: "Found multiple results, be more specific: " + strings.Join(ambiguous.Names(), ", "),
		}
	case errors.As(err, &parseErr):
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	case errors.As(err, &notFound):
		return &ExitError{Code: exitcodes.NotFound, Message: err.Error()}
	case errors.As(err, &rateLimit):
		return &ExitError{Code: exitcodes.GeneralError, Message: err.Error() + " (set GOPM_GITHUB_TOKEN to raise the limit)"}
	}
	return &ExitError{Code: exitcodes.GeneralError, Message: err.Error()}
}
