// Package toolrunner executes external command-line collaborators and
// collects their line-oriented output.
package toolrunner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

const (
	// maxLineSize bounds a single stdout line
	maxLineSize = 10 * 1024 * 1024
	// waitDelay bounds how long Wait blocks on inherited pipes after a kill
	waitDelay = 5 * time.Second
)

// Result is the outcome of one subprocess invocation.
type Result struct {
	Lines    []string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Tool is an external executable resolved on PATH.
type Tool struct {
	name   string
	binary string
	path   string
	logger zerolog.Logger
}

// Resolve looks binary up on PATH. name is the role used in logs and errors
// (for example "prober"). A missing binary yields *errorwrapper.ToolNotFoundError.
func Resolve(name, binary string, logger zerolog.Logger) (*Tool, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, errorwrapper.NewToolNotFoundError(name, binary, err)
	}
	return &Tool{
		name:   name,
		binary: binary,
		path:   path,
		logger: logger.With().Str("component", "toolrunner").Str("tool", name).Logger(),
	}, nil
}

func (t *Tool) Name() string { return t.name }

// Path returns the resolved executable path
func (t *Tool) Path() string { return t.path }

// Run executes the tool with args, feeding stdin when non-nil. Stdout is
// returned as lines with trailing whitespace removed and blank lines dropped.
// A non-zero exit, a start failure or a cancelled context yields a
// *errorwrapper.ToolExecutionError alongside the partial Result.
func (t *Tool) Run(ctx context.Context, args []string, stdin io.Reader) (*Result, error) {
	start := time.Now()
	result := &Result{ExitCode: -1}

	cmd := exec.CommandContext(ctx, t.path, args...)
	cmd.WaitDelay = waitDelay
	if stdin != nil {
		cmd.Stdin = stdin
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, errorwrapper.NewToolExecutionError(t.name, -1, "", errorwrapper.WrapError(err, "failed to create stdout pipe"))
	}
	var stderrBuf strings.Builder
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return result, errorwrapper.NewToolExecutionError(t.name, -1, "", errorwrapper.WrapError(err, "failed to start process"))
	}

	t.logger.Debug().Int("pid", cmd.Process.Pid).Strs("args", args).Msg("Subprocess started")

	lines, readErr := scanLines(stdout)
	// Drain so the child never blocks on a full pipe after a scan error.
	_, _ = io.Copy(io.Discard, stdout)

	waitErr := cmd.Wait()
	result.Lines = lines
	result.Stderr = stderrBuf.String()
	result.Duration = time.Since(start)
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, errorwrapper.NewToolExecutionError(t.name, result.ExitCode, result.Stderr, ctxErr)
	}

	// Truncated output is a failure even when the process exited cleanly.
	if readErr != nil {
		t.logger.Warn().Err(readErr).Int("lines", len(lines)).Msg("Error reading subprocess output")
		return result, errorwrapper.NewToolExecutionError(t.name, result.ExitCode, result.Stderr,
			errorwrapper.WrapError(readErr, "failed to read stdout"))
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return result, errorwrapper.NewToolExecutionError(t.name, result.ExitCode, result.Stderr, waitErr)
		}
		return result, errorwrapper.NewToolExecutionError(t.name, result.ExitCode, result.Stderr, nil)
	}

	t.logger.Debug().
		Int("lines", len(result.Lines)).
		Dur("duration", result.Duration).
		Msg("Subprocess finished")
	return result, nil
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// ExpandArgs returns a copy of args with every placeholder occurrence
// replaced by value.
func ExpandArgs(args []string, placeholder, value string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = strings.ReplaceAll(arg, placeholder, value)
	}
	return out
}
