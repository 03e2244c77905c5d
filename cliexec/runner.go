package cliexec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/secbridge/secquery", "cliexec")

// Result is the outcome of exactly one Invocation. Both streams are captured
// fully; there is no streaming, responses are bounded by the time-range and
// filter narrowing the caller applies.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	TimedOut bool
	Duration time.Duration
}

// Runner executes an Invocation. The package-level Run is the production
// implementation; tests substitute a fake to avoid spawning processes.
type Runner func(ctx context.Context, inv Invocation) (*Result, error)

// Run spawns the external process and waits for completion, bounded by the
// Invocation timeout. All failure modes are translated to a typed error:
// timeout maps to ErrCommandTimeout, nonzero exit and unstartable binaries
// map to ErrCommandFailed with stderr in the message. There is no retry.
func Run(ctx context.Context, inv Invocation) (*Result, error) {
	timeout := inv.timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	runErr := cmd.Run()

	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(started),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		logger.KV(xlog.WARNING,
			"executable", inv.Executable,
			"status", "timed_out",
			"timeout", timeout.String(),
		)
		return res, errors.WithMessagef(ErrCommandTimeout, "%s after %s", inv.Executable, timeout)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			logger.KV(xlog.WARNING,
				"executable", inv.Executable,
				"status", "nonzero_exit",
				"exit_code", res.ExitCode,
			)
			return res, errors.WithMessagef(ErrCommandFailed,
				"%s exited with code %d: %s", inv.Executable, res.ExitCode, diagnostic(res))
		}
		// Start failures: binary not found, permission denied, etc.
		res.ExitCode = -1
		return res, errors.WithMessagef(ErrCommandFailed, "%s: %s", inv.Executable, runErr.Error())
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"executable", inv.Executable,
		"args", strings.Join(inv.Args, " "),
		"duration", res.Duration.String(),
		"stdout_bytes", len(res.Stdout),
	)
	return res, nil
}

// diagnostic picks the most useful stream for an error message, preferring
// stderr the way the wrapped CLIs report failures.
func diagnostic(res *Result) string {
	if s := strings.TrimSpace(string(res.Stderr)); s != "" {
		return s
	}
	return strings.TrimSpace(string(res.Stdout))
}
