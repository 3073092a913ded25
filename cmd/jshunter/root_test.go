package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "jshunter", cmd.Use)
	assert.NotEmpty(t, cmd.Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	for name, short := range map[string]string{
		"config": "c", "input": "i", "output": "o", "concurrency": "t", "log-level": "", "no-history": "",
	} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand, name)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"run", "probe", "endpoints", "secrets", "history", "version"}, names)
}

func TestVersionCmd(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "jshunter version "))
}

// execute runs the CLI with isolated stdout and stderr
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := "history_config:\n  enabled: true\n  db_path: " + filepath.Join(dir, "history.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCmd_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "js_urls.txt")
	outDir := filepath.Join(dir, "js_out")
	require.NoError(t, os.WriteFile(input, []byte("\n\n"), 0644))
	cfgPath := writeConfig(t, dir)

	stdout, stderr, err := execute(t, "run", "-c", cfgPath, "-i", input, "-o", outDir, "-t", "3")

	require.NoError(t, err)
	assert.Empty(t, stdout, "stdout carries only secret findings")
	assert.Contains(t, stderr, "COMPLETED")
	for _, name := range []string{"js_alive.txt", "js_endpoints.txt", "js_secrets.txt"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Empty(t, data, name)
	}

	stdout, _, err = execute(t, "history", "-c", cfgPath, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "COMPLETED")
}

func TestRunCmd_MissingInput(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "js_out")

	_, stderr, err := execute(t, "run", "--no-history", "-i", filepath.Join(dir, "absent.txt"), "-o", outDir)

	assert.ErrorIs(t, err, errRunFailed)
	assert.Contains(t, stderr, "FAILED")
	assert.NoDirExists(t, outDir)
}

func TestRunCmd_InvalidConcurrency(t *testing.T) {
	_, _, err := execute(t, "run", "--no-history", "-t", "0")

	assert.ErrorIs(t, err, errorwrapper.ErrInvalidConfiguration)
}

func TestStageCmd_MissingCheckpoint(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := execute(t, "endpoints", "--no-history", "-o", filepath.Join(dir, "js_out"))

	assert.ErrorIs(t, err, errRunFailed)
	assert.Contains(t, stderr, "js_alive.txt")
}

func TestHistoryCmd_Empty(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	stdout, _, err := execute(t, "history", "-c", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs recorded")
}

func TestHistoryCmd_Disabled(t *testing.T) {
	_, _, err := execute(t, "history", "--no-history")

	assert.ErrorIs(t, err, errorwrapper.ErrInvalidConfiguration)
}
