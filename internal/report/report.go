// Package report writes the errors left for a human to look at.
package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"ts-fixer/internal/classify"
)

// Unresolved returns the lines matched by the catch-all category, in their
// original order. The catch-all matches every line, so nothing is dropped.
func Unresolved(lines []string) []string {
	catchAll := classify.Pattern(classify.Others)
	remaining := make([]string, 0, len(lines))
	for _, line := range lines {
		if catchAll.MatchString(line) {
			remaining = append(remaining, line)
		}
	}
	return remaining
}

// Write replaces path with one line per error. Nothing is written for an
// empty list.
func Write(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write report: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush report: %w", err)
	}
	return f.Close()
}
