package logger

import (
	"errors"
	"io"

	"github.com/monsterinc/jshunter/internal/config"
	"github.com/rs/zerolog"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
	closers []io.Closer
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

func (l *Logger) GetConfig() LoggerConfig {
	return l.config
}

// Close releases any log files held open by the logger
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New creates a logger from the application log configuration
func New(cfg config.LogConfig) (*Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}

// NewWithRunID creates a logger whose file output is grouped by run ID
func NewWithRunID(cfg config.LogConfig, runID string) (*Logger, error) {
	return NewLoggerBuilder().
		WithRunID(runID).
		WithConfig(cfg).
		Build()
}
