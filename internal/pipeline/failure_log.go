package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/common/summary"
)

// FailureLog appends one tab-separated line per failed item:
// stage, url, exit code, reason.
type FailureLog struct {
	path string
	mu   sync.Mutex
}

func NewFailureLog(path string) *FailureLog {
	return &FailureLog{path: path}
}

// Reset removes the log left by a previous run
func (fl *FailureLog) Reset() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if err := os.Remove(fl.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errorwrapper.WrapErrorf(err, "failed to remove failure log %s", fl.path)
	}
	return nil
}

// Append writes items for stage. The file is created on the first failure.
func (fl *FailureLog) Append(stage string, items []summary.FailedItem) error {
	if len(items) == 0 {
		return nil
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(fl.path), 0755); err != nil {
		return errorwrapper.WrapError(err, "failed to create failure log directory")
	}
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errorwrapper.WrapErrorf(err, "failed to open failure log %s", fl.path)
	}

	w := bufio.NewWriter(f)
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", stage, item.URL, item.ExitCode, flatten(item.Reason))
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errorwrapper.WrapError(err, "failed to write failure log")
	}
	return f.Close()
}

// flatten keeps a reason on a single line without tabs
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
