package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ts-fixer/internal/storage"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous fixer runs",
	Example: `  ts-fixer history
  ts-fixer history --limit 5 --format yaml`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "table", "Output format: table or yaml")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.HistoryEnabled() {
		return fmt.Errorf("run history is disabled")
	}

	db, err := storage.OpenDB(a.cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := storage.RecentRuns(db, historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	return renderHistory(cmd.OutOrStdout(), runs, historyFormat)
}

func renderHistory(w io.Writer, runs []storage.Run, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "table":
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return nil
		}
		fmt.Fprintln(w, historyTable(runs))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table or yaml)", format)
	}
}

func historyTable(runs []storage.Run) string {
	header := lipgloss.NewStyle().Bold(true)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "DIRECTORY", "ERRORS", "INSTALLED", "TSCONFIG", "REPORT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})

	for _, r := range runs {
		installed := strings.Join(r.Installed, ",")
		if r.InstallInvoked && r.InstallExitCode != 0 {
			installed += fmt.Sprintf(" (exit %d)", r.InstallExitCode)
		}
		status := r.PatchStatus
		if r.DryRun {
			status += " (dry run)"
		}
		t.Row(
			r.StartedAt.Format("2006-01-02 15:04:05"),
			truncate.StringWithTail(r.Directory, 30, "…"),
			fmt.Sprint(r.ErrorCount),
			truncate.StringWithTail(installed, 30, "…"),
			status,
			r.ReportPath,
		)
	}

	return t.Render()
}
