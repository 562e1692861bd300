package simctl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Executor runs an external command and returns its output
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// Output is what a finished command printed
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecExecutor runs commands on the host with os/exec
type ExecExecutor struct {
	// Timeout bounds every command; zero means no limit beyond ctx
	Timeout time.Duration
}

// Run implements Executor
func (e ExecExecutor) Run(ctx context.Context, name string, args ...string) (Output, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}
	return out, err
}
