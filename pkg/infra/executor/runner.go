package executor

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
)

// Env vars the build tools may inherit from the daemon environment.
// Everything else is withheld so repository code cannot read service
// credentials during a build.
var allowedEnvVars = []string{
	"PATH", "HOME", "LANG", "LC_ALL", "TMPDIR",
	// proxy settings follow the curl conventions
	"http_proxy", "https_proxy", "no_proxy", "HTTPS_PROXY", "NO_PROXY",
	// common knobs for python tooling
	"PYTHONDONTWRITEBYTECODE", "PIP_NO_CACHE_DIR", "VIRTUAL_ENV",
}

type runner struct {
	extraEnv []string
}

// Option configures the command runner
type Option func(*runner)

// WithEnv appends environment entries in KEY=VALUE form to every
// executed command.
func WithEnv(env ...string) Option {
	return func(r *runner) {
		r.extraEnv = append(r.extraEnv, env...)
	}
}

// New creates a host command runner for the runtime and build steps.
func New(opts ...Option) interfaces.CommandRunner {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath resolves a binary on the host PATH
func (r *runner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", goerr.Wrap(err, "command not found on host", goerr.V("name", name))
	}
	return path, nil
}

// Run executes the command in dir and captures combined stdout and
// stderr. On a non-zero exit the returned error carries the tool's own
// message so callers can surface it directly.
func (r *runner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append(env(), r.extraEnv...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	ctxlog.From(ctx).Debug("Executing command", "name", name, "args", args, "dir", dir)

	err := cmd.Run()
	out := output.Bytes()

	if ctx.Err() == context.DeadlineExceeded {
		return out, goerr.Wrap(ctx.Err(), "command timed out", goerr.V("command", name))
	}

	if err != nil {
		msg := findErrorMessage(out)
		if msg == "" {
			msg = err.Error()
		}
		return out, goerr.Wrap(err, msg,
			goerr.V("command", name),
			goerr.V("output", truncate(string(out), 2048)),
		)
	}

	return out, nil
}

func env() []string {
	var env []string
	for _, k := range allowedEnvVars {
		if v, ok := os.LookupEnv(k); ok {
			env = append(env, k+"="+v)
		}
	}
	return env
}

// findErrorMessage picks the tool's own error line out of the combined
// output. Setuptools and pip prefix theirs with "error:" or "ERROR:";
// python tracebacks end with the exception line, so the last non-empty
// line is the fallback.
func findErrorMessage(output []byte) string {
	var last string
	sc := bufio.NewScanner(bytes.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "error:") || strings.HasPrefix(line, "ERROR:") {
			return line
		}
		last = line
	}
	return last
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
