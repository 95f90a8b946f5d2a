package installer

import (
	"os"
	"path/filepath"
)

// Auto asks Detect to pick the package manager from the project's lockfile.
const Auto = "auto"

var lockfiles = []struct {
	file string
	pm   string
}{
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"bun.lockb", "bun"},
	{"bun.lock", "bun"},
	{"package-lock.json", "npm"},
}

// Detect returns the package manager whose lockfile is present in dir,
// falling back to npm.
func Detect(dir string) string {
	for _, lf := range lockfiles {
		if _, err := os.Stat(filepath.Join(dir, lf.file)); err == nil {
			return lf.pm
		}
	}
	return "npm"
}

// Resolve maps Auto to the detected package manager and passes anything
// else through.
func Resolve(pm, dir string) string {
	if pm == Auto {
		return Detect(dir)
	}
	return pm
}
