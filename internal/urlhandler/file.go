package urlhandler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// maxLineSize bounds a single line read from a URL list or tool output
const maxLineSize = 1024 * 1024

// ReadURLsFromFile reads a newline-delimited URL list. Surrounding whitespace
// is trimmed and blank lines are dropped; order and duplicates are preserved.
// A missing file yields a *errorwrapper.MissingInputError.
func ReadURLsFromFile(filePath string, logger zerolog.Logger) ([]string, error) {
	fileLogger := logger.With().Str("file_path", filePath).Logger()

	info, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		fileLogger.Error().Msg("Input file not found")
		return nil, errorwrapper.NewMissingInputError(filePath)
	}
	if err != nil {
		return nil, errorwrapper.WrapErrorf(err, "error checking file %s", filePath)
	}
	if info.IsDir() {
		return nil, errorwrapper.NewError("input path is a directory, not a file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, errorwrapper.WrapErrorf(err, "error opening input file %s", filePath)
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		return nil, errorwrapper.WrapErrorf(err, "error reading input file %s", filePath)
	}

	invalid := 0
	for _, line := range lines {
		if ValidateURLFormat(line) != nil {
			invalid++
		}
	}
	if invalid > 0 {
		// Passed through untouched; the prober decides what is reachable.
		fileLogger.Warn().Int("count", invalid).Msg("Input contains lines that do not parse as URLs")
	}

	fileLogger.Debug().Int("lines", len(lines)).Msg("Finished reading file")
	return lines, nil
}

// ReadLines returns the trimmed, non-blank lines of r
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteLines atomically replaces filePath with lines, one per line. The
// parent directory is created when absent. An empty slice yields an empty file.
func WriteLines(filePath string, lines []string) error {
	af, err := CreateAtomic(filePath)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(af)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			af.Abort()
			return errorwrapper.WrapError(err, "failed to write line")
		}
	}
	if err := w.Flush(); err != nil {
		af.Abort()
		return errorwrapper.WrapError(err, "failed to flush output")
	}
	return af.Commit()
}

// AtomicFile is written under a temporary name and moved over its target on
// Commit, so readers never observe a partial file.
type AtomicFile struct {
	*os.File
	target string
	done   bool
}

// CreateAtomic opens a temp file next to filePath, creating the parent
// directory when absent.
func CreateAtomic(filePath string) (*AtomicFile, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errorwrapper.WrapErrorf(err, "failed to create output directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create temp file")
	}
	return &AtomicFile{File: tmp, target: filePath}, nil
}

// Commit closes the temp file and renames it onto the target
func (af *AtomicFile) Commit() error {
	if af.done {
		return errorwrapper.NewError("atomic file %s already finished", af.target)
	}
	af.done = true

	tmpPath := af.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := af.Close(); err != nil {
		cleanup()
		return errorwrapper.WrapError(err, "failed to close temp file")
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return errorwrapper.WrapError(err, "failed to set file mode")
	}
	if err := os.Rename(tmpPath, af.target); err != nil {
		cleanup()
		return errorwrapper.WrapErrorf(err, "failed to move output into place at %s", af.target)
	}
	return nil
}

// Abort discards the temp file and leaves the target untouched. Calling it
// after Commit is a no-op.
func (af *AtomicFile) Abort() {
	if af.done {
		return
	}
	af.done = true
	_ = af.Close()
	_ = os.Remove(af.Name())
}
