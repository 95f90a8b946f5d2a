// Package classify sorts raw build-error lines into the categories the
// fixers know how to handle.
package classify

import (
	"regexp"
	"strings"
)

// Category names one class of build error.
type Category string

const (
	TypeErrors        Category = "type_errors"
	MissingModules    Category = "missing_modules"
	BrokenImports     Category = "broken_imports"
	IncorrectSettings Category = "incorrect_settings"
	Others            Category = "others"
)

// Order is the priority in which categories are tested. Others must stay
// last: its pattern matches every line.
var Order = []Category{TypeErrors, MissingModules, BrokenImports, IncorrectSettings, Others}

var patterns = map[Category]*regexp.Regexp{
	TypeErrors:        regexp.MustCompile(`Type '.*' is not assignable to type '.*'`),
	MissingModules:    regexp.MustCompile(`Cannot find module '(.*?)'`),
	BrokenImports:     regexp.MustCompile(`Module not found: Can't resolve '(.*?)'`),
	IncorrectSettings: regexp.MustCompile(`Property '(.*?)' does not exist in type 'CompilerOptions'`),
	Others:            regexp.MustCompile(`.*`),
}

// Match is the outcome of classifying one line.
type Match struct {
	Line     string
	Category Category
	Groups   []string // captured groups, without the full match
}

// Pattern returns the expression bound to c, or nil for an unknown category.
func Pattern(c Category) *regexp.Regexp {
	return patterns[c]
}

// Find runs a single category's pattern against line.
func Find(c Category, line string) ([]string, bool) {
	re, ok := patterns[c]
	if !ok {
		return nil, false
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// Classify returns the first category in Order whose pattern matches line.
func Classify(line string) Match {
	for _, c := range Order {
		if groups, ok := Find(c, line); ok {
			return Match{Line: line, Category: c, Groups: groups}
		}
	}
	// unreachable while Others matches everything
	return Match{Line: line, Category: Others}
}

// Summarize counts lines per category.
func Summarize(lines []string) map[Category]int {
	counts := make(map[Category]int, len(Order))
	for _, line := range lines {
		counts[Classify(line).Category]++
	}
	return counts
}

// SplitLines turns raw log content into trimmed, non-empty error lines.
func SplitLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
