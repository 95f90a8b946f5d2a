package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"ts-fixer/internal/executor"
	"ts-fixer/internal/installer"
	"ts-fixer/internal/pipeline"
	"ts-fixer/internal/storage"
	"ts-fixer/internal/tsconfig"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func runProcess(ctx context.Context, a *app, out io.Writer) error {
	cfg := a.cfg

	opts := []installer.Option{
		installer.WithPackageManager(installer.Resolve(cfg.PackageManager, cfg.WorkDir)),
		installer.WithDryRun(cfg.DryRun),
	}
	if a.tty {
		opts = append(opts, installer.WithProgress(os.Stderr))
	}

	p := pipeline.New(
		cfg.Path(cfg.LogFile),
		cfg.Path(cfg.ReportFile),
		installer.New(executor.New(cfg.WorkDir), a.log, opts...),
		tsconfig.New(cfg.Path(cfg.TSConfig), a.log, cfg.DryRun),
		a.log,
	)

	sum := p.Run(ctx)

	if cfg.HistoryEnabled() {
		if err := recordRun(cfg.HistoryDB, cfg.WorkDir, cfg.DryRun, sum); err != nil {
			a.log.Warn(fmt.Sprintf("Could not record run history: %v", err))
		}
	}

	printSummary(out, sum)
	return nil
}

func recordRun(dbPath, workDir string, dryRun bool, sum pipeline.Summary) error {
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	run := storage.Run{
		ID:              uuid.NewString(),
		StartedAt:       sum.StartedAt,
		FinishedAt:      sum.FinishedAt,
		Directory:       workDir,
		ErrorCount:      len(sum.Errors),
		Installed:       sum.Install.Modules,
		InstallInvoked:  sum.Install.Invoked,
		InstallExitCode: sum.Install.ExitCode,
		PatchStatus:     string(sum.Patch.Status),
		ReportPath:      sum.ReportPath,
		DryRun:          dryRun,
	}
	if len(sum.Categories) > 0 {
		run.Categories = make(map[string]int, len(sum.Categories))
		for c, n := range sum.Categories {
			run.Categories[string(c)] = n
		}
	}
	for _, e := range sum.Patch.Edits {
		run.Patched = append(run.Patched, e.Key)
	}

	return storage.SaveRun(db, run)
}

func printSummary(out io.Writer, sum pipeline.Summary) {
	if sum.Empty() {
		fmt.Fprintln(out, mutedStyle.Render("Nothing to fix."))
		return
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d error(s)", len(sum.Errors)))

	switch {
	case sum.Install.DryRun:
		parts = append(parts, fmt.Sprintf("would install %d", len(sum.Install.Modules)))
	case sum.Install.Failed():
		parts = append(parts, warnStyle.Render("install failed"))
	case sum.Install.Invoked:
		parts = append(parts, fmt.Sprintf("installed %d", len(sum.Install.Modules)))
	}

	if n := len(sum.Patch.Edits); n > 0 {
		verb := "patched"
		switch sum.Patch.Status {
		case tsconfig.StatusDryRun:
			verb = "would patch"
		case tsconfig.StatusWriteFailed:
			verb = "failed to patch"
		}
		parts = append(parts, fmt.Sprintf("%s %d option(s)", verb, n))
	}

	if sum.ReportPath != "" {
		parts = append(parts, "report "+sum.ReportPath)
	}

	fmt.Fprintln(out, okStyle.Render("✓ ")+strings.Join(parts, mutedStyle.Render(" · ")))
}
