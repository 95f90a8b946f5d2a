// Package pipeline runs one remediation pass over a build-error log:
// install missing modules, patch tsconfig.json, report what is left.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ts-fixer/internal/classify"
	"ts-fixer/internal/installer"
	"ts-fixer/internal/report"
	"ts-fixer/internal/tsconfig"
)

// Installer installs packages reported missing.
type Installer interface {
	Install(ctx context.Context, lines []string) installer.Result
}

// Patcher repairs compiler options reported as unknown.
type Patcher interface {
	Apply(lines []string) tsconfig.Result
}

// Summary records what a run did.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Errors     []string
	Categories map[classify.Category]int
	Install    installer.Result
	Patch      tsconfig.Result
	Unresolved []string
	ReportPath string // empty when no report was written
	ReportErr  error
}

// Empty reports whether the log held nothing to act on.
func (s Summary) Empty() bool {
	return len(s.Errors) == 0
}

type Pipeline struct {
	logFile    string
	reportFile string
	installer  Installer
	patcher    Patcher
	log        *zap.Logger
}

func New(logFile, reportFile string, inst Installer, patcher Patcher, log *zap.Logger) *Pipeline {
	return &Pipeline{
		logFile:    logFile,
		reportFile: reportFile,
		installer:  inst,
		patcher:    patcher,
		log:        log,
	}
}

// Run executes every step in order. A failing step is logged and the next
// one still runs; only an absent or empty log ends the run early.
func (p *Pipeline) Run(ctx context.Context) Summary {
	sum := Summary{StartedAt: time.Now()}
	p.log.Debug("Starting to process errors...")

	content := p.readLog()
	if content == "" {
		p.log.Info("No errors found in the log.")
		sum.FinishedAt = time.Now()
		return sum
	}

	sum.Errors = classify.SplitLines(content)
	if len(sum.Errors) == 0 {
		p.log.Info("No errors found in the log.")
		sum.FinishedAt = time.Now()
		return sum
	}

	sum.Categories = classify.Summarize(sum.Errors)
	for _, c := range classify.Order {
		if n := sum.Categories[c]; n > 0 {
			p.log.Debug(fmt.Sprintf("%s: %d", c, n))
		}
	}

	sum.Install = p.installer.Install(ctx, sum.Errors)
	sum.Patch = p.patcher.Apply(sum.Errors)

	sum.Unresolved = report.Unresolved(sum.Errors)
	if len(sum.Unresolved) > 0 {
		p.log.Debug("Generating error report...")
		if err := report.Write(p.reportFile, sum.Unresolved); err != nil {
			p.log.Error(fmt.Sprintf("Error generating report: %v", err))
			sum.ReportErr = err
		} else {
			p.log.Info(fmt.Sprintf("Error report generated: %s", p.reportFile))
			sum.ReportPath = p.reportFile
		}
	}

	p.log.Info("Fixes applied!")
	sum.FinishedAt = time.Now()
	return sum
}

func (p *Pipeline) readLog() string {
	p.log.Debug("Reading errors from the log file...")

	data, err := os.ReadFile(p.logFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.log.Warn(fmt.Sprintf("Log file '%s' not found.", p.logFile))
		} else {
			p.log.Error(fmt.Sprintf("Error reading log file '%s': %v", p.logFile, err))
		}
		return ""
	}
	if !utf8.Valid(data) {
		p.log.Error(fmt.Sprintf("Error reading log file '%s': not valid UTF-8", p.logFile))
		return ""
	}
	return string(data)
}
