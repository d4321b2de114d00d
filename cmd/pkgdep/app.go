// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pkgdep/pkgdep/internal/config"
	"github.com/pkgdep/pkgdep/internal/issue"
	"github.com/pkgdep/pkgdep/pkg/repository"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		LoadWithPath(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// App wires the services shared by every command handler.
	App struct {
		Config ConfigProvider
		Fs     afero.Fs
		stdout io.Writer
		stderr io.Writer

		flags globalFlags
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	globalFlags struct {
		configPath string
		repoRoot   string
		logLevel   string
		verbose    bool
	}

	// session is the per-invocation state derived from flags and config.
	session struct {
		cfg     *config.Config
		logger  *log.Logger
		verbose bool
	}
)

// NewApp creates an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Fs:     deps.Fs,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Fs == nil {
		app.Fs = afero.NewOsFs()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// newSession loads the configuration and applies the global flags over it.
func (a *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, verbose: a.flags.verbose || cfg.UI.Verbose}
	level := string(cfg.LogLevel)
	if a.flags.logLevel != "" {
		level = a.flags.logLevel
	}
	s.logger, err = newLogger(a.stderr, level, s.verbose)
	if err != nil {
		return nil, err
	}
	if a.flags.repoRoot != "" {
		s.cfg.Repository.Root = a.flags.repoRoot
	}
	return s, nil
}

// newLogger builds the stderr logger. Verbose output forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("configure logging").
			WithResource(level).
			WithSuggestion("Use one of debug, info, warn or error").
			Wrap(err).
			BuildError()
	}
	if verbose {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: "pkgdep", Level: lvl}), nil
}

// openRepository opens the configured repository root, or the default one.
func (a *App) openRepository(s *session) (*repository.Repository, error) {
	root := s.cfg.Repository.Root
	if root == "" {
		var err error
		if root, err = repository.DefaultRoot(); err != nil {
			return nil, repositoryError(err, "~/.pkgdep/repository")
		}
	}
	repo, err := repository.New(root, repository.WithFs(a.Fs), repository.WithLogger(s.logger))
	if err != nil {
		return nil, repositoryError(err, root)
	}
	s.logger.Debug("repository", "root", repo.Root())
	return repo, nil
}

func repositoryError(err error, root string) error {
	return issue.NewErrorContext().
		WithOperation("open package repository").
		WithResource(root).
		WithSuggestion("Pass --repository or set repository.root in the config file").
		WithIssue(issue.RepositoryUnavailableId).
		Wrap(err).
		BuildError()
}
