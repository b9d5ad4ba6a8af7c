// Package app wires the command tree of the coinsim binary: it resolves the
// configuration of each command, sets up logging, metrics and tracing, runs
// the simulation or analysis and maps failures to exit codes.
package app

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

// Version is overridden at build time with -ldflags "-X ...app.Version=...".
var Version = "dev"

// Application represents the coinsim application instance.
type Application struct {
	Args      []string
	ErrWriter io.Writer
}

// New creates an application for the given process arguments. args[0] is
// the program name.
func New(args []string, errWriter io.Writer) *Application {
	return &Application{Args: args, ErrWriter: errWriter}
}

// Run executes the selected command and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	root := a.newRootCommand(out)
	if len(a.Args) > 1 {
		root.SetArgs(a.Args[1:])
	} else {
		root.SetArgs([]string{})
	}

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
	}
	return apperrors.ExitCodeFor(err)
}

func (a *Application) newRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "coinsim",
		Short: "Monte Carlo simulator for fair coin flips",
		Long: `coinsim samples fair coin flips to study two classical results:
the expected waiting time 2^n for n consecutive heads, and the 1/(2√n)
convergence of the head fraction of n flips towards one half.

Records, summary tables, fitted models and a Markdown report are written
to a timestamped directory under --output-dir.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(a.ErrWriter)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewConfigError("%v", err)
	})

	root.AddCommand(
		a.newSimulationCommand(streakCommand),
		a.newSimulationCommand(convergenceCommand),
		a.newSimulationCommand(progressiveCommand),
		a.newAnalyzeCommand(),
		a.newCalibrateCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			PrintVersion(cmd.OutOrStdout())
		},
	}
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "coinsim %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
