// Package osutil runs external tools (git, language validators) as
// cancellable subprocesses whose whole process tree dies with the context.
package osutil

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// waitDelay bounds how long Wait blocks on output pipes after the process is killed
const waitDelay = 500 * time.Millisecond

// ErrTimeout is returned by Run when the command exceeded its deadline
var ErrTimeout = errors.New("command timed out")

// Command builds a context-bound command in its own process group
func Command(ctx context.Context, dir, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	killTree(cmd)
	return cmd
}

// Result holds the captured output of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes name with args in dir, feeding stdin when non-nil. A timeout of
// zero means no deadline beyond ctx. A non-zero exit is reported in Result with
// a nil error; errors are reserved for commands that could not run or timed out.
func Run(ctx context.Context, dir string, timeout time.Duration, stdin []byte, name string, args ...string) (*Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := Command(ctx, dir, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		return result, ErrTimeout
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, errors.Wrapf(err, "failed to run %s", name)
	}

	return result, nil
}

// Output returns the combined trimmed stderr and stdout of a result, stderr first
func (r *Result) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stderr) + "\n" + strings.TrimSpace(r.Stdout))
}

// LookPath reports whether an executable is available on PATH
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
