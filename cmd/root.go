package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"ts-fixer/internal/executor"
	"ts-fixer/internal/terminal"
)

var processFlag bool

var rootCmd = &cobra.Command{
	Use:   "ts-fixer",
	Short: "Automatically fix common TypeScript errors from a build log",
	Long: `ts-fixer reads ts_errors.log, installs modules reported as missing,
adds compiler options reported as unknown to tsconfig.json, and writes the
remaining errors to error_report.txt.

Without --process it re-opens itself in a new terminal window.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&processFlag, "process", false, "Process errors from the log")
}

func runRoot(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Debug("Starting main function...")
	if cwd, err := os.Getwd(); err == nil {
		a.log.Debug("Current working directory: " + cwd)
	}

	if processFlag {
		a.log.Debug("Process argument detected.")
		return runProcess(cmd.Context(), a, cmd.OutOrStdout())
	}

	a.log.Debug("No process argument detected, opening terminal.")
	relaunch(cmd.Context(), a, runtime.GOOS, executor.New(a.cfg.WorkDir))
	return nil
}

// relaunch re-runs this binary with --process in a new terminal window.
// Failures are logged only.
func relaunch(ctx context.Context, a *app, goos string, runner executor.Runner) {
	exe, err := os.Executable()
	if err != nil {
		a.log.Error(fmt.Sprintf("Cannot locate executable: %v", err))
		return
	}

	launcher, err := terminal.For(goos, runner)
	if err != nil {
		if errors.Is(err, terminal.ErrUnsupportedOS) {
			a.log.Error("Unsupported operating system for automatic terminal opening.")
		} else {
			a.log.Error(fmt.Sprintf("Error opening terminal: %v", err))
		}
		return
	}

	a.log.Debug(fmt.Sprintf("Detected %s platform.", goos))
	a.log.Debug("Opening terminal to re-execute the program...")
	if err := launcher.Launch(ctx, exe, "--process"); err != nil {
		a.log.Error(fmt.Sprintf("Error opening terminal: %v", err))
	}
}
