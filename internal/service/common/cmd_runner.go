package common

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// maxStderr bounds how much of a failed command's stderr is kept in the error
const maxStderr = 512

// CmdRunner is interface for executing external commands
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// realCmdRunner implements CmdRunner using os/exec
type realCmdRunner struct{}

// NewCmdRunner creates a new CmdRunner
func NewCmdRunner() CmdRunner {
	return &realCmdRunner{}
}

// Run executes external command with given arguments and returns its stdout.
// A non-zero exit carries the tail of stderr in the error.
func (r *realCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderr := tail(strings.TrimSpace(string(exitErr.Stderr)), maxStderr); stderr != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, stderr)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, err)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
