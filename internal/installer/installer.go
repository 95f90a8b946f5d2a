// Package installer installs packages that build errors report as missing.
package installer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"go.uber.org/zap"

	"ts-fixer/internal/classify"
	"ts-fixer/internal/executor"
)

// Result describes one installer pass.
type Result struct {
	Modules  []string
	Command  string
	Invoked  bool
	DryRun   bool
	ExitCode int
	Output   string
}

// Failed reports whether the package manager ran and exited non-zero.
func (r Result) Failed() bool {
	return r.Invoked && r.ExitCode != 0
}

type Installer struct {
	runner         executor.Runner
	log            *zap.Logger
	packageManager string
	dryRun         bool
	progress       io.Writer
}

type Option func(*Installer)

// WithPackageManager overrides the default "npm".
func WithPackageManager(pm string) Option {
	return func(i *Installer) { i.packageManager = pm }
}

// WithDryRun logs the install command instead of running it.
func WithDryRun(dryRun bool) Option {
	return func(i *Installer) { i.dryRun = dryRun }
}

// WithProgress shows a spinner on w while the package manager runs.
func WithProgress(w io.Writer) Option {
	return func(i *Installer) { i.progress = w }
}

func New(runner executor.Runner, log *zap.Logger, opts ...Option) *Installer {
	i := &Installer{
		runner:         runner,
		log:            log,
		packageManager: "npm",
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Collect returns the distinct module names reported missing, in the order
// they first appear.
func Collect(lines []string) []string {
	seen := make(map[string]bool)
	var modules []string
	for _, line := range lines {
		groups, ok := classify.Find(classify.MissingModules, line)
		if !ok || len(groups) == 0 {
			continue
		}
		name := groups[0]
		if seen[name] {
			continue
		}
		seen[name] = true
		modules = append(modules, name)
	}
	return modules
}

// addDev is the subcommand each package manager uses to add dev
// dependencies by name. Anything unlisted gets npm's form.
var addDev = map[string][]string{
	"npm":  {"install", "--save-dev"},
	"yarn": {"add", "--dev"},
	"pnpm": {"add", "--save-dev"},
	"bun":  {"add", "--dev"},
}

// Args builds the dev-dependency install arguments for modules under pm,
// which may be a bare name or a path to the executable.
func Args(pm string, modules []string) []string {
	name := strings.ToLower(filepath.Base(pm))
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".exe"), ".cmd")

	prefix, ok := addDev[name]
	if !ok {
		prefix = addDev["npm"]
	}
	return append(append([]string(nil), prefix...), modules...)
}

// Install runs the package manager once for every missing module. A failed
// install is logged and reported in the result; it is never fatal.
func (i *Installer) Install(ctx context.Context, lines []string) Result {
	modules := Collect(lines)
	if len(modules) == 0 {
		return Result{}
	}

	args := Args(i.packageManager, modules)
	res := Result{
		Modules: modules,
		Command: executor.Join(i.packageManager, args...),
		DryRun:  i.dryRun,
	}

	if i.dryRun {
		i.log.Info("Dry run, would install missing packages: " + strings.Join(modules, ", "))
		i.log.Debug("Skipped command: " + res.Command)
		return res
	}

	i.log.Info("Installing missing packages: " + strings.Join(modules, ", "))

	var s *spinner.Spinner
	if i.progress != nil {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(i.progress))
		s.Suffix = " " + res.Command
		s.Start()
	}
	out := i.runner.Run(ctx, i.packageManager, args...)
	if s != nil {
		s.Stop()
	}

	res.Invoked = true
	res.ExitCode = out.ExitCode

	if out.Success() {
		res.Output = out.Stdout
		i.log.Debug(fmt.Sprintf("%s install output (%s): %s", i.packageManager, out.Duration.Round(time.Millisecond), out.Stdout))
	} else {
		res.Output = out.Stderr
		i.log.Error(fmt.Sprintf("Error installing packages (exit code %d): %s", out.ExitCode, out.Stderr))
	}

	return res
}
