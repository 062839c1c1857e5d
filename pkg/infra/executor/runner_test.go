package executor_test

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipwright/pkg/infra/executor"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell based tests are not supported on windows")
	}
}

func TestRunner_LookPath(t *testing.T) {
	runner := executor.New()

	path, err := runner.LookPath("sh")
	gt.NoError(t, err)
	gt.Value(t, path).NotEqual("")

	_, err = runner.LookPath("no-such-binary-on-any-host")
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("command not found")
}

func TestRunner_Run(t *testing.T) {
	skipWithoutShell(t)
	runner := executor.New()
	ctx := context.Background()

	out, err := runner.Run(ctx, "", "sh", "-c", "echo hello")
	gt.NoError(t, err)
	gt.String(t, string(out)).Contains("hello")
}

func TestRunner_Run_InDir(t *testing.T) {
	skipWithoutShell(t)
	runner := executor.New()
	ctx := context.Background()

	dir := t.TempDir()
	out, err := runner.Run(ctx, dir, "sh", "-c", "pwd")
	gt.NoError(t, err)
	gt.String(t, strings.TrimSpace(string(out))).Contains(dir)
}

func TestRunner_Run_CapturesStderr(t *testing.T) {
	skipWithoutShell(t)
	runner := executor.New()
	ctx := context.Background()

	out, err := runner.Run(ctx, "", "sh", "-c", "echo 'error: invalid command' >&2; exit 1")
	gt.Error(t, err)
	gt.String(t, string(out)).Contains("error: invalid command")

	// The tool's own message surfaces in the error
	gt.String(t, err.Error()).Contains("invalid command")
}

func TestRunner_Run_Timeout(t *testing.T) {
	skipWithoutShell(t)
	runner := executor.New()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, "", "sh", "-c", "sleep 10")
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("timed out")
}

func TestRunner_Run_ExtraEnv(t *testing.T) {
	skipWithoutShell(t)
	runner := executor.New(executor.WithEnv("BUILD_MARKER=fromtest"))
	ctx := context.Background()

	out, err := runner.Run(ctx, "", "sh", "-c", "echo $BUILD_MARKER")
	gt.NoError(t, err)
	gt.String(t, string(out)).Contains("fromtest")
}

func TestRunner_Run_WithholdsEnvironment(t *testing.T) {
	skipWithoutShell(t)

	t.Setenv("SHIPWRIGHT_SECRET_PROBE", "must-not-leak")

	runner := executor.New()
	out, err := runner.Run(context.Background(), "", "sh", "-c", "echo probe=$SHIPWRIGHT_SECRET_PROBE")
	gt.NoError(t, err)
	gt.False(t, strings.Contains(string(out), "must-not-leak"))

	// Sanity: the variable is visible to the test process itself
	gt.Value(t, os.Getenv("SHIPWRIGHT_SECRET_PROBE")).Equal("must-not-leak")
}
