// Package proc runs external commands under a time bound and classifies how
// they ended.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/jeefy/lorademo/internal/models"
)

// waitDelay bounds how long Run keeps reading pipes after the process was
// killed, in case a grandchild still holds them open.
const waitDelay = 2 * time.Second

// Invoker runs commands in an optional working directory with extra
// environment variables appended to the current process environment.
type Invoker struct {
	Dir string
	Env []string
}

// Run executes name with args, waiting at most timeout.
//
// A timeout is reported before anything else, so callers never see partial
// output from a killed process mistaken for a regular failure. A missing
// executable is OutcomeNotFound; a nonzero exit is OutcomeExitError with the
// exit code and captured stderr. Cancellation of ctx by the caller is
// OutcomeError wrapping context.Canceled.
func (iv Invoker) Run(ctx context.Context, timeout time.Duration, name string, args ...string) models.Outcome {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	cmd.Dir = iv.Dir
	if len(iv.Env) > 0 {
		cmd.Env = append(os.Environ(), iv.Env...)
	}

	start := time.Now()
	err := cmd.Run()
	out := models.Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Elapsed:  time.Since(start),
		Err:      err,
	}
	out.Kind = classify(ctx, err)
	if out.Kind == models.OutcomeError && errors.Is(ctx.Err(), context.Canceled) {
		out.Err = fmt.Errorf("proc: %s interrupted: %w", name, context.Canceled)
	}
	slog.Debug("proc: command finished", "cmd", name, "args", args, "kind", out.Kind, "exit", out.ExitCode, "elapsed", out.Elapsed)
	return out
}

// Run is Invoker{}.Run.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) models.Outcome {
	return Invoker{}.Run(ctx, timeout, name, args...)
}

func classify(ctx context.Context, err error) models.OutcomeKind {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return models.OutcomeTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		// interrupted by the caller, not a failure of the tool
		return models.OutcomeError
	}
	if err == nil {
		return models.OutcomeOK
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return models.OutcomeNotFound
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return models.OutcomeExitError
	}
	return models.OutcomeError
}
