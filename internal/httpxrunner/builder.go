package httpxrunner

import (
	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// RunnerBuilder is a fluent builder for creating a configured Runner.
type RunnerBuilder struct {
	logger zerolog.Logger
	config *Config
}

// NewRunnerBuilder creates a new builder with a logger.
func NewRunnerBuilder(logger zerolog.Logger) *RunnerBuilder {
	return &RunnerBuilder{
		logger: logger.With().Str("component", "HTTPXRunner").Logger(),
	}
}

// WithConfig sets the configuration for the runner.
func (b *RunnerBuilder) WithConfig(config *Config) *RunnerBuilder {
	b.config = config
	return b
}

// Build validates the configuration and returns a Runner. The httpx engine
// itself is created lazily by Run.
func (b *RunnerBuilder) Build() (*Runner, error) {
	if b.config == nil {
		return nil, errorwrapper.NewValidationError("config", nil, "httpx runner config not set")
	}
	if b.config.Threads <= 0 {
		return nil, errorwrapper.NewValidationError("threads", b.config.Threads, "threads must be positive")
	}
	if b.config.Timeout <= 0 {
		return nil, errorwrapper.NewValidationError("timeout", b.config.Timeout, "timeout must be positive")
	}

	collector := NewResultCollector(b.logger)
	return &Runner{
		logger:              b.logger,
		config:              b.config,
		collector:           collector,
		optionsConfigurator: NewOptionsConfigurator(b.config, collector.Collect),
	}, nil
}
