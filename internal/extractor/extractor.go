// Package extractor runs a per-URL collaborator (endpoint extractor or secret
// scanner) and returns its output lines.
package extractor

import (
	"context"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/config"
	"github.com/rs/zerolog"
)

// Kind names what an invoker extracts
type Kind string

const (
	KindEndpoints Kind = "endpoints"
	KindSecrets   Kind = "secrets"
)

// Output is what one invocation produced. ExitCode is -1 when no process
// exit status applies.
type Output struct {
	Lines    []string
	Stderr   string
	ExitCode int
}

// Invoker runs the collaborator against a single URL.
//
// Prepare is called once before any Invoke and reports collaborators that
// cannot run at all (for example a binary missing from PATH). Invoke must be
// safe for concurrent use.
type Invoker interface {
	Prepare() error
	Invoke(ctx context.Context, url string) (Output, error)
	Kind() Kind
}

// New creates the invoker selected by cfg.Engine
func New(kind Kind, cfg config.ExtractorConfig, logger zerolog.Logger) (Invoker, error) {
	logger = logger.With().Str("component", "Extractor").Str("kind", string(kind)).Str("engine", cfg.Engine).Logger()
	switch cfg.Engine {
	case config.EngineExec, "":
		return NewExecInvoker(kind, cfg, logger), nil
	case config.EngineJSluice:
		return NewJSluiceInvoker(kind, cfg, logger), nil
	default:
		return nil, errorwrapper.NewValidationError("engine", cfg.Engine, "unknown extractor engine")
	}
}
