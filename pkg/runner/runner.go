// Package runner executes external commands with a bounded timeout and
// captured output. It is the only place in skillrig that spawns processes;
// everything above it deals in argv slices and structured results.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"github.com/skillrig/skillrig/pkg/logger"
	"github.com/skillrig/skillrig/pkg/osutil"
)

// Result holds the outcome of a command execution. Code is nil when the
// process could not be spawned or was killed before producing an exit code
// (e.g. on timeout).
type Result struct {
	Code   *int
	Stdout string
	Stderr string
}

// Runner runs a command line to completion. Implementations must honor the
// timeout by terminating the process rather than hanging.
type Runner interface {
	Run(ctx context.Context, argv []string, timeout time.Duration) (Result, error)
}

// ExecRunner runs commands via os/exec in their own process group so that
// a timed-out command and its children are killed together.
type ExecRunner struct{}

// New returns the default exec-backed runner.
func New() *ExecRunner {
	return &ExecRunner{}
}

// Run executes argv with the given timeout. A nonzero exit is not an error:
// the exit code is reported in the result. The returned error is reserved
// for invalid input.
func (r *ExecRunner) Run(ctx context.Context, argv []string, timeout time.Duration) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty command")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	osutil.SetProcessGroup(cmd)
	osutil.SetProcessGroupKill(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			result.Code = &code
		}
	}

	if err != nil {
		logger.G(ctx).WithError(err).WithField("command", argv[0]).Debug("Command did not exit cleanly")
	}

	return result, nil
}
