package procrun

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"multiscan/internal/logging"
)

// FailureCode is returned when the process could not be started or its output
// could not be read. It never collides with a successful exit.
const FailureCode = -1

// Command describes one external tool invocation.
type Command struct {
	Args        []string
	Dir         string
	Env         []string
	Description string
}

// String renders the argument vector for logs.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Result reports how an invocation ended.
type Result struct {
	ExitCode int
	Duration time.Duration
	Err      error
}

// Success reports whether the tool exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// Runner abstracts command execution for testability.
type Runner interface {
	Run(ctx context.Context, logger *slog.Logger, cmd Command) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// New returns the default process runner.
func New() ExecRunner {
	return ExecRunner{}
}

// Run executes cmd and blocks until it exits or ctx is cancelled.
func (ExecRunner) Run(ctx context.Context, logger *slog.Logger, cmd Command) Result {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String("description", cmd.Description))

	if len(cmd.Args) == 0 {
		logger.Warn("no command to run", logging.String(logging.FieldEventType, "empty_command"))
		return Result{ExitCode: 0}
	}

	logger.Info("running external tool",
		logging.String("command", cmd.String()),
		logging.String("dir", cmd.Dir),
	)

	start := time.Now()
	code, stderrLines, err := execute(ctx, logger, cmd)
	elapsed := time.Since(start)

	attrs := []logging.Attr{
		logging.String("command", cmd.String()),
		logging.Int("exit_code", code),
		logging.Duration("duration", elapsed),
	}
	switch {
	case code == FailureCode:
		logging.ErrorWithContext(logger, "external tool failed to run", "tool_spawn_failed",
			append(attrs, logging.Error(err), logging.String(logging.FieldErrorHint, "verify the tool is installed and executable"))...)
	case code != 0:
		if stderrLines > 0 {
			logging.WarnWithContext(logger, "external tool reported errors", "tool_failed",
				append(attrs, logging.Int("stderr_lines", stderrLines), logging.String(logging.FieldImpact, "stage will abort"))...)
		} else {
			logger.Info("external tool finished", logging.Args(attrs...)...)
		}
	default:
		logger.Info("external tool finished", logging.Args(attrs...)...)
	}

	return Result{ExitCode: code, Duration: elapsed, Err: err}
}

func execute(ctx context.Context, logger *slog.Logger, command Command) (int, int, error) {
	cmd := exec.CommandContext(ctx, command.Args[0], command.Args[1:]...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return FailureCode, 0, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return FailureCode, 0, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return FailureCode, 0, fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var stderrLines atomic.Int64

	scan := func(r io.Reader, stream string, counter *atomic.Int64) {
		defer wg.Done()
		reader := bufio.NewReaderSize(r, 64*1024)
		for {
			line, truncated, err := readLine(reader)
			if line != "" || err == nil {
				if counter != nil {
					counter.Add(1)
				}
				attrs := []logging.Attr{logging.String(logging.FieldStream, stream)}
				if truncated {
					attrs = append(attrs, logging.Bool("truncated", true))
				}
				logger.Debug(line, logging.Args(attrs...)...)
			}
			if err == nil {
				continue
			}
			if !errors.Is(err, io.EOF) {
				once.Do(func() {
					scanErr = err
				})
				// Keep the pipe drained so the child never blocks on write.
				_, _ = io.Copy(io.Discard, r)
			}
			return
		}
	}

	wg.Add(2)
	go scan(stdout, "stdout", nil)
	go scan(stderr, "stderr", &stderrLines)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return FailureCode, int(stderrLines.Load()), fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code == 0 || code == FailureCode {
				// Killed by a signal, usually context cancellation.
				return FailureCode, int(stderrLines.Load()), fmt.Errorf("wait command: %w", err)
			}
			return code, int(stderrLines.Load()), nil
		}
		return FailureCode, int(stderrLines.Load()), fmt.Errorf("wait command: %w", err)
	}
	return 0, int(stderrLines.Load()), nil
}

// maxLineBytes caps a single logged output line. The rest of the line is
// read and dropped.
const maxLineBytes = 64 * 1024

// readLine returns the next line without its terminator, truncated to
// maxLineBytes.
func readLine(r *bufio.Reader) (string, bool, error) {
	var buf []byte
	truncated := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if room := maxLineBytes - len(buf); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		buf = append(buf, chunk...)
		if err != nil || !isPrefix {
			return string(buf), truncated, err
		}
	}
}
