// Package executor runs shell command lines as child processes with captured
// output. It enforces no policy; callers vet every command before execution.
package executor

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/google/shlex"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// Options tunes output collection and per-command timeouts.
type Options struct {
	// MaxOutputSize caps collected bytes per stream. <= 0 means 10MB.
	MaxOutputSize int
	// CommandTimeout bounds each command. <= 0 means no timeout.
	CommandTimeout time.Duration
}

const defaultMaxOutputSize = 10 * 1024 * 1024

// Executor implements models.CommandRunner over os/exec.
type Executor struct {
	opts   Options
	logger *zap.Logger
}

// New creates an Executor. A nil logger is replaced with a no-op logger.
func New(opts Options, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxOutputSize <= 0 {
		opts.MaxOutputSize = defaultMaxOutputSize
	}
	return &Executor{opts: opts, logger: logger}
}

// ExecuteAll runs commands one at a time, in order, stopping immediately
// after the first command whose exit status is non-zero. The returned slice
// has one result per command attempted, so its length equals len(commands)
// iff all succeeded.
func (e *Executor) ExecuteAll(ctx context.Context, commands []string) []models.ExecutionResult {
	results := make([]models.ExecutionResult, 0, len(commands))
	for _, command := range commands {
		res := e.executeOne(ctx, command)
		results = append(results, res)
		if !res.Success {
			e.logger.Warn("stopping execution after command failure",
				zap.String("command", command))
			break
		}
	}
	return results
}

// Run executes a single pre-tokenized command. It is used by tools that
// build argv directly (package managers) rather than from a command line.
func (e *Executor) Run(ctx context.Context, argv []string) models.ExecutionResult {
	if len(argv) == 0 {
		return models.ExecutionResult{Success: false, Stderr: "empty command"}
	}
	return e.spawn(ctx, argv)
}

// executeOne tokenizes and runs one command line. Tokenization failures and
// unresolvable executables yield a failed result carrying the OS error text
// in place of stderr; they never raise out of the call.
func (e *Executor) executeOne(ctx context.Context, command string) models.ExecutionResult {
	e.logger.Info("executing command", zap.String("command", command))

	argv, err := shlex.Split(command)
	if err != nil {
		return models.ExecutionResult{Success: false, Stderr: err.Error()}
	}
	if len(argv) == 0 {
		return models.ExecutionResult{Success: false, Stderr: "empty command"}
	}

	return e.spawn(ctx, argv)
}

func (e *Executor) spawn(ctx context.Context, argv []string) models.ExecutionResult {
	if e.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.CommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = nil // no interactive stdin is forwarded to children

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return models.ExecutionResult{Success: false, Stderr: err.Error()}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return models.ExecutionResult{Success: false, Stderr: err.Error()}
	}

	if err := cmd.Start(); err != nil {
		// Covers exec.ErrNotFound and permission errors.
		return models.ExecutionResult{Success: false, Stderr: err.Error()}
	}

	var stdout, stderr string
	g := new(errgroup.Group)
	g.Go(func() error {
		stdout = collect(stdoutPipe, e.opts.MaxOutputSize)
		return nil
	})
	g.Go(func() error {
		stderr = collect(stderrPipe, e.opts.MaxOutputSize)
		return nil
	})
	_ = g.Wait()

	waitErr := cmd.Wait()

	res := models.ExecutionResult{
		Success: waitErr == nil,
		Stdout:  stdout,
		Stderr:  stderr,
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			// Not a plain non-zero exit: surface the OS/context error text.
			if res.Stderr == "" {
				res.Stderr = waitErr.Error()
			}
		}
		if ctx.Err() != nil && res.Stderr == "" {
			res.Stderr = ctx.Err().Error()
		}
		e.logger.Warn("command failed",
			zap.String("command", argv[0]),
			zap.Error(waitErr))
	}

	return res
}

// collect drains r up to max bytes, appending a marker when truncated.
func collect(r io.Reader, max int) string {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	truncated := false
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if len(buf)+n > max {
				buf = append(buf, chunk[:max-len(buf)]...)
				truncated = true
				// Keep draining so the child never blocks on a full pipe.
			} else {
				buf = append(buf, chunk[:n]...)
			}
		}
		if err != nil {
			break
		}
	}
	if truncated {
		return string(buf) + "\n... [output truncated]"
	}
	return string(buf)
}
