package errorwrapper

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types used across the application
var (
	// ErrMissingInput indicates the URL list or a stage checkpoint is absent
	ErrMissingInput = errors.New("missing input file")
	// ErrToolNotFound indicates an external executable is not resolvable
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolExecution indicates an external executable exited abnormally
	ErrToolExecution = errors.New("tool execution failed")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// MissingInputError reports an input file that does not exist.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input file '%s' does not exist", e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}

// NewMissingInputError creates a new missing input error
func NewMissingInputError(path string) *MissingInputError {
	return &MissingInputError{Path: path}
}

// ToolNotFoundError reports an executable that could not be found on PATH.
type ToolNotFoundError struct {
	Tool    string
	Binary  string
	Wrapped error
}

func (e *ToolNotFoundError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: binary '%s' not found: %v", e.Tool, e.Binary, e.Wrapped)
	}
	return fmt.Sprintf("%s: binary '%s' not found", e.Tool, e.Binary)
}

func (e *ToolNotFoundError) Unwrap() []error {
	if e.Wrapped != nil {
		return []error{ErrToolNotFound, e.Wrapped}
	}
	return []error{ErrToolNotFound}
}

// NewToolNotFoundError creates a new tool not found error
func NewToolNotFoundError(tool, binary string, wrapped error) *ToolNotFoundError {
	return &ToolNotFoundError{
		Tool:    tool,
		Binary:  binary,
		Wrapped: wrapped,
	}
}

// ToolExecutionError reports a subprocess that failed to run to a clean exit.
type ToolExecutionError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Wrapped  error
}

func (e *ToolExecutionError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.Wrapped != nil {
		msg += fmt.Sprintf(": %v", e.Wrapped)
	}
	if stderr := firstLine(e.Stderr); stderr != "" {
		msg += fmt.Sprintf(" (stderr: %s)", stderr)
	}
	return msg
}

func (e *ToolExecutionError) Unwrap() []error {
	if e.Wrapped != nil {
		return []error{ErrToolExecution, e.Wrapped}
	}
	return []error{ErrToolExecution}
}

// NewToolExecutionError creates a new tool execution error
func NewToolExecutionError(tool string, exitCode int, stderr string, wrapped error) *ToolExecutionError {
	return &ToolExecutionError{
		Tool:     tool,
		ExitCode: exitCode,
		Stderr:   stderr,
		Wrapped:  wrapped,
	}
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
