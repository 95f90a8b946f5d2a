package cmd

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ts-fixer/internal/executor"
)

type launchRunner struct {
	argv   []string
	calls  int
	result executor.Result
}

func (r *launchRunner) Run(ctx context.Context, name string, args ...string) executor.Result {
	r.calls++
	r.argv = append([]string{name}, args...)
	return r.result
}

func observedApp(t *testing.T) (*app, *observer.ObservedLogs) {
	t.Helper()
	a := testApp(t)
	core, logs := observer.New(zapcore.DebugLevel)
	a.log = zap.New(core)
	return a, logs
}

func TestRelaunch_UnsupportedOS(t *testing.T) {
	a, logs := observedApp(t)
	runner := &launchRunner{}

	relaunch(context.Background(), a, "plan9", runner)

	assert.Zero(t, runner.calls, "nothing may run on an unsupported OS")
	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, "Unsupported operating system for automatic terminal opening.", errs[0].Message)
}

func TestRelaunch_LaunchFailureIsLogged(t *testing.T) {
	a, logs := observedApp(t)
	runner := &launchRunner{result: executor.Result{ExitCode: 127, Stderr: "gnome-terminal: not found"}}

	relaunch(context.Background(), a, "linux", runner)

	require.Equal(t, 1, runner.calls)
	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "Error opening terminal")
	assert.Contains(t, errs[0].Message, "gnome-terminal: not found")
}

func TestRelaunch_Success(t *testing.T) {
	a, logs := observedApp(t)
	runner := &launchRunner{}

	relaunch(context.Background(), a, "linux", runner)

	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, []string{"gnome-terminal", "--", exe, "--process"}, runner.argv)
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("Detected linux platform.").Len())
}
