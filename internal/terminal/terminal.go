// Package terminal re-opens the program in a new terminal window.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"ts-fixer/internal/executor"
)

var ErrUnsupportedOS = errors.New("unsupported operating system for automatic terminal opening")

// Launcher starts exe with args in a separate terminal window.
type Launcher interface {
	Launch(ctx context.Context, exe string, args ...string) error
}

// builder turns the target program into the argv that opens a terminal.
type builder func(exe string, args []string) []string

var builders = map[string]builder{
	"windows": func(exe string, args []string) []string {
		return append([]string{"cmd", "/c", "start", "cmd", "/k", exe}, args...)
	},
	"linux": func(exe string, args []string) []string {
		return append([]string{"gnome-terminal", "--", exe}, args...)
	},
	"darwin": func(exe string, args []string) []string {
		script := fmt.Sprintf(`tell application "Terminal" to do script "%s"`, appleScriptEscape(shellQuote(exe, args)))
		return []string{"osascript", "-e", script}
	},
}

type osLauncher struct {
	goos   string
	build  builder
	runner executor.Runner
}

// For returns the launcher for goos.
func For(goos string, runner executor.Runner) (Launcher, error) {
	b, ok := builders[goos]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
	return &osLauncher{goos: goos, build: b, runner: runner}, nil
}

// Current returns the launcher for the running OS.
func Current(runner executor.Runner) (Launcher, error) {
	return For(runtime.GOOS, runner)
}

// Command returns the argv For(goos) would run, for logging and tests.
func Command(goos, exe string, args ...string) ([]string, error) {
	b, ok := builders[goos]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
	return b(exe, args), nil
}

func (l *osLauncher) Launch(ctx context.Context, exe string, args ...string) error {
	argv := l.build(exe, args)
	res := l.runner.Run(ctx, argv[0], argv[1:]...)
	if !res.Success() {
		return fmt.Errorf("%s: exit code %d: %s", l.goos, res.ExitCode, res.Stderr)
	}
	return nil
}

func shellQuote(exe string, args []string) string {
	parts := []string{"'" + strings.ReplaceAll(exe, "'", `'\''`) + "'"}
	return strings.Join(append(parts, args...), " ")
}

func appleScriptEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
