// Package proc runs external build tools synchronously and reports their
// exit codes as data rather than errors.
package proc

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

// Result holds the outcome of a finished subprocess.
type Result struct {
	// ExitCode is the process's exit status. Zero means success.
	ExitCode int
	// Duration is the wall-clock time the process ran for.
	Duration time.Duration
}

// Runner starts a command in dir and blocks until it exits.
//
// A non-nil error means the command couldn't be run at all (missing
// binary, bad directory); a nonzero exit status is reported through
// Result, not the error.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (*Result, error)
}

// ExecRunner runs commands with os/exec, forwarding output to Stdout and
// Stderr.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer

	// Timeout bounds each command's runtime. Zero means no limit.
	Timeout time.Duration
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (*Result, error) {
	if name == "" {
		return nil, errors.New("command name is required")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	start := time.Now()
	err := cmd.Run()
	result := &Result{Duration: time.Since(start)}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
	}

	return result, nil
}
