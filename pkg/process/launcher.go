package process

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
)

// Command describes one program invocation
type Command struct {
	Program string
	Args    []string
	Dir     string
	// Env is appended to the inherited environment
	Env []string
}

// String renders the command line for logs
func (c Command) String() string {
	return strings.Join(append([]string{c.Program}, c.Args...), " ")
}

// Result is what a finished process left behind
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Success reports a zero exit code
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Launcher runs a command to completion. A non-zero exit code is not an
// error; the error return is reserved for processes that could not run.
type Launcher interface {
	Launch(ctx context.Context, cmd Command) (*Result, error)
}

// ExecLauncher runs commands with os/exec
type ExecLauncher struct {
	logger zerolog.Logger
}

// NewExecLauncher creates a launcher for real processes
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{logger: logging.GetLogger("process")}
}

// Launch implements Launcher. Cancelling ctx kills the process.
func (l *ExecLauncher) Launch(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.LogCommand(l.logger, c.Program, c.Args)
	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to start %s", c.Program).
				WithDetail("command", c.String())
		}
		result.ExitCode = exitErr.ExitCode()
	}

	l.logger.Debug().
		Str("program", c.Program).
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("Process finished")
	return result, nil
}
