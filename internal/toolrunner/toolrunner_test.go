package toolrunner

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve("extractor", "definitely-not-a-real-binary-jshunter", zerolog.Nop())

	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrToolNotFound)
	var notFound *errorwrapper.ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "definitely-not-a-real-binary-jshunter", notFound.Binary)
}

func TestRun_CollectsLines(t *testing.T) {
	script := writeScript(t, `for a in "$@"; do echo "$a"; done; echo; echo "  trailing   "`)
	tool, err := Resolve("extractor", script, zerolog.Nop())
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), []string{"-i", "https://a/x.js"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", "https://a/x.js", "  trailing"}, res.Lines)
	assert.Equal(t, 0, res.ExitCode)
	assert.Positive(t, res.Duration)
}

func TestRun_Stdin(t *testing.T) {
	script := writeScript(t, `cat`)
	tool, err := Resolve("prober", script, zerolog.Nop())
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), nil, strings.NewReader("https://a\nhttps://b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a", "https://b"}, res.Lines)
}

func TestRun_NonZeroExit(t *testing.T) {
	script := writeScript(t, `echo partial; echo "boom" >&2; exit 3`)
	tool, err := Resolve("extractor", script, zerolog.Nop())
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrToolExecution)

	var execErr *errorwrapper.ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.ExitCode)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "boom")
	assert.Equal(t, []string{"partial"}, res.Lines)
}

func TestRun_ContextDeadline(t *testing.T) {
	script := writeScript(t, `exec sleep 10`)
	tool, err := Resolve("extractor", script, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = tool.Run(ctx, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, errorwrapper.ErrToolExecution)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_OversizedLineFails(t *testing.T) {
	script := writeScript(t, `echo first; head -c 11000000 /dev/zero | tr '\0' a; echo; echo last`)
	tool, err := Resolve("extractor", script, zerolog.Nop())
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrToolExecution)
	assert.ErrorIs(t, err, bufio.ErrTooLong)

	var execErr *errorwrapper.ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 0, execErr.ExitCode)
	assert.Equal(t, []string{"first"}, res.Lines)
}

func TestExpandArgs(t *testing.T) {
	args := []string{"-i", "{url}", "--ref={url}", "-o", "cli"}

	got := ExpandArgs(args, "{url}", "https://a/x.js")

	assert.Equal(t, []string{"-i", "https://a/x.js", "--ref=https://a/x.js", "-o", "cli"}, got)
	assert.Equal(t, "{url}", args[1], "input args must not be modified")
}
