package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

type Result struct {
	Command   string
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// Success reports whether the process exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner starts an external program and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// Exec runs programs directly (no shell) in Dir, or the current directory
// when Dir is empty.
type Exec struct {
	Dir string
}

func New(dir string) *Exec {
	return &Exec{Dir: dir}
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) Result {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.Dir != "" {
		cmd.Dir = e.Dir
	} else {
		cwd, _ := os.Getwd()
		cmd.Dir = cwd
	}
	cmd.Env = os.Environ()

	err := cmd.Run()

	result := Result{
		Command:   Join(name, args...),
		Stdout:    strings.TrimSuffix(stdout.String(), "\n"),
		Stderr:    strings.TrimSuffix(stderr.String(), "\n"),
		Duration:  time.Since(start),
		Timestamp: start,
	}

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			result.ExitCode = exitError.ExitCode()
		} else {
			// never started (not found, permission denied, ...)
			result.ExitCode = 1
			if result.Stderr == "" {
				result.Stderr = err.Error()
			}
		}
	}

	return result
}

// Join renders a command line for logs.
func Join(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
