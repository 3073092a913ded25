package errorwrapper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "context"))

	base := errors.New("boom")
	wrapped := WrapError(base, "reading file")
	require.Error(t, wrapped)
	assert.Equal(t, "reading file: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	wrappedf := WrapErrorf(base, "stage %s", "alive")
	assert.Equal(t, "stage alive: boom", wrappedf.Error())
	assert.Nil(t, WrapErrorf(nil, "stage %s", "alive"))
}

func TestMissingInputError(t *testing.T) {
	err := fmt.Errorf("probe stage: %w", NewMissingInputError("js_urls.txt"))

	assert.ErrorIs(t, err, ErrMissingInput)
	var missing *MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "js_urls.txt", missing.Path)
	assert.Contains(t, err.Error(), "js_urls.txt")
}

func TestToolNotFoundError(t *testing.T) {
	cause := errors.New("executable file not found in $PATH")
	err := NewToolNotFoundError("prober", "httpx", cause)

	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "prober: binary 'httpx' not found: executable file not found in $PATH", err.Error())

	bare := NewToolNotFoundError("secrets", "secretfinder", nil)
	assert.ErrorIs(t, bare, ErrToolNotFound)
	assert.Equal(t, "secrets: binary 'secretfinder' not found", bare.Error())
}

func TestToolExecutionError(t *testing.T) {
	cause := errors.New("exit status 2")
	err := NewToolExecutionError("linkfinder", 2, "Traceback\nValueError: bad url\n", cause)

	assert.ErrorIs(t, err, ErrToolExecution)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "linkfinder exited with code 2: exit status 2 (stderr: Traceback)", err.Error())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("concurrency", 0, "must be at least 1")

	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, "validation failed for field 'concurrency': must be at least 1 (value: 0)", err.Error())
}
