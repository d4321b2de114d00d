// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pkgdep/pkgdep/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgdep",
		Short: "Package level dependencies for bundle projects",
		Long: TitleStyle.Render("pkgdep") + SubtitleStyle.Render(" - package level dependencies for bundle projects") + `

pkgdep records which artifacts export which Java packages, at which
versions, in a local repository (~/.pkgdep/repository). A project that
imports a package can then be resolved to the artifacts providing it.

` + SubtitleStyle.Render("Examples:") + `
  pkgdep export                       Record the exports of the project in .
  pkgdep list                         Show every package in the repository
  pkgdep resolve com.example.api 1.5  Find the artifacts exporting a package
  pkgdep remove com.example.api       Drop a package record
  pkgdep config show                  Show the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/pkgdep/config.cue)")
	pf.StringVar(&app.flags.repoRoot, "repository", "", "package repository root (default is ~/.pkgdep/repository)")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newExportCommand(app),
		newListCommand(app),
		newResolveCommand(app),
		newParseCommand(app),
		newRemoveCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's exit code. It is called by main.main.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.flags.verbose)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// renderError prints err with its suggestions. Verbose output adds the error
// chain and the catalog entry for the failure.
func renderError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
	if !verbose {
		return
	}
	id := classifyError(err)
	if id == 0 {
		return
	}
	rendered, renderErr := issue.Get(id).Render("dark")
	if renderErr != nil {
		fmt.Fprintln(w, WarningStyle.Render("cannot render help: ")+renderErr.Error())
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay uses ActionableError.Format when err carries one.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
