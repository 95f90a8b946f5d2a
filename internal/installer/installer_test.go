package installer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ts-fixer/internal/executor"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	result executor.Result
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) executor.Result {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.result
}

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestCollect(t *testing.T) {
	modules := Collect([]string{
		"Cannot find module 'lodash'",
		"Cannot find module 'axios'",
		"Cannot find module 'lodash'",
		"Type 'x' is not assignable to type 'y'",
		"Module not found: Can't resolve 'react'",
	})

	assert.Equal(t, []string{"lodash", "axios"}, modules)
	assert.Empty(t, Collect([]string{"nothing here"}))
}

func TestInstall_DeduplicatedSingleInvocation(t *testing.T) {
	runner := &fakeRunner{result: executor.Result{Stdout: "added 2 packages"}}
	log, logs := newObserved()

	res := New(runner, log).Install(context.Background(), []string{
		"Cannot find module 'lodash'",
		"Cannot find module 'axios'",
		"Cannot find module 'lodash'",
	})

	require.Len(t, runner.calls, 1)
	c := runner.calls[0]
	assert.Equal(t, "npm", c.name)
	require.GreaterOrEqual(t, len(c.args), 2)
	assert.Equal(t, []string{"install", "--save-dev"}, c.args[:2])

	names := append([]string(nil), c.args[2:]...)
	sort.Strings(names)
	assert.Equal(t, []string{"axios", "lodash"}, names)

	assert.True(t, res.Invoked)
	assert.False(t, res.Failed())
	assert.Equal(t, 1, logs.FilterMessage("Installing missing packages: lodash, axios").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("added 2 packages").Len())
}

func TestInstall_NoModules(t *testing.T) {
	runner := &fakeRunner{}
	log, _ := newObserved()

	res := New(runner, log).Install(context.Background(), []string{"random unclassified error"})

	assert.Empty(t, runner.calls)
	assert.False(t, res.Invoked)
	assert.Empty(t, res.Modules)
}

func TestInstall_FailureIsLoggedNotFatal(t *testing.T) {
	runner := &fakeRunner{result: executor.Result{ExitCode: 1, Stderr: "npm ERR! 404 Not Found"}}
	log, logs := newObserved()

	res := New(runner, log, WithPackageManager("pnpm")).Install(context.Background(), []string{"Cannot find module 'nope'"})

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pnpm", runner.calls[0].name)
	assert.True(t, res.Failed())
	assert.Equal(t, "npm ERR! 404 Not Found", res.Output)

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "npm ERR! 404 Not Found")
	assert.Contains(t, errs[0].Message, "exit code 1")
}

func TestInstall_MessagesCarryNoFields(t *testing.T) {
	// fields would be appended after the message and break the
	// "timestamp - LEVEL - message" layout of the log file
	for _, result := range []executor.Result{
		{Stdout: "added 1 package"},
		{ExitCode: 1, Stderr: "boom"},
	} {
		runner := &fakeRunner{result: result}
		log, logs := newObserved()

		New(runner, log).Install(context.Background(), []string{"Cannot find module 'lodash'"})

		for _, entry := range logs.All() {
			assert.Empty(t, entry.Context, "entry %q", entry.Message)
		}
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		pm   string
		want []string
	}{
		{"npm", []string{"install", "--save-dev", "lodash"}},
		{"yarn", []string{"add", "--dev", "lodash"}},
		{"pnpm", []string{"add", "--save-dev", "lodash"}},
		{"bun", []string{"add", "--dev", "lodash"}},
		{"/usr/local/bin/yarn", []string{"add", "--dev", "lodash"}},
		{"pnpm.cmd", []string{"add", "--save-dev", "lodash"}},
		{"cnpm", []string{"install", "--save-dev", "lodash"}},
	}

	for _, tt := range tests {
		if got := Args(tt.pm, []string{"lodash"}); !assert.Equal(t, tt.want, got) {
			t.Logf("package manager %q", tt.pm)
		}
	}
}

func TestInstall_AutoDetectedPackageManager(t *testing.T) {
	tests := []struct {
		lockfile string
		want     []string
	}{
		{"", []string{"npm", "install", "--save-dev", "lodash"}},
		{"package-lock.json", []string{"npm", "install", "--save-dev", "lodash"}},
		{"yarn.lock", []string{"yarn", "add", "--dev", "lodash"}},
		{"pnpm-lock.yaml", []string{"pnpm", "add", "--save-dev", "lodash"}},
		{"bun.lockb", []string{"bun", "add", "--dev", "lodash"}},
		{"bun.lock", []string{"bun", "add", "--dev", "lodash"}},
	}

	for _, tt := range tests {
		t.Run(tt.lockfile, func(t *testing.T) {
			dir := t.TempDir()
			if tt.lockfile != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tt.lockfile), nil, 0644))
			}
			runner := &fakeRunner{}
			log, _ := newObserved()

			res := New(runner, log, WithPackageManager(Resolve(Auto, dir))).
				Install(context.Background(), []string{"Cannot find module 'lodash'"})

			require.Len(t, runner.calls, 1)
			got := append([]string{runner.calls[0].name}, runner.calls[0].args...)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.Join(tt.want, " "), res.Command)
		})
	}
}

func TestInstall_DryRun(t *testing.T) {
	runner := &fakeRunner{}
	log, _ := newObserved()

	res := New(runner, log, WithDryRun(true)).Install(context.Background(), []string{"Cannot find module 'lodash'"})

	assert.Empty(t, runner.calls)
	assert.True(t, res.DryRun)
	assert.False(t, res.Invoked)
	assert.Equal(t, "npm install --save-dev lodash", res.Command)
}
