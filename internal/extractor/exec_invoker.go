package extractor

import (
	"context"
	"sync"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/config"
	"github.com/monsterinc/jshunter/internal/toolrunner"
	"github.com/rs/zerolog"
)

// ExecInvoker runs an external binary once per URL, substituting the URL
// for every {url} placeholder in its arguments.
type ExecInvoker struct {
	kind   Kind
	cfg    config.ExtractorConfig
	logger zerolog.Logger

	mu   sync.Mutex
	tool *toolrunner.Tool
}

func NewExecInvoker(kind Kind, cfg config.ExtractorConfig, logger zerolog.Logger) *ExecInvoker {
	return &ExecInvoker{kind: kind, cfg: cfg, logger: logger}
}

func (e *ExecInvoker) Kind() Kind { return e.kind }

// Prepare resolves the binary on PATH
func (e *ExecInvoker) Prepare() error {
	tool, err := toolrunner.Resolve(string(e.kind), e.cfg.Binary, e.logger)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.tool = tool
	e.mu.Unlock()
	e.logger.Debug().Str("path", tool.Path()).Msg("Resolved extractor binary")
	return nil
}

// Args returns the argument list for url
func (e *ExecInvoker) Args(url string) []string {
	return toolrunner.ExpandArgs(e.cfg.Args, config.URLPlaceholder, url)
}

func (e *ExecInvoker) Invoke(ctx context.Context, url string) (Output, error) {
	e.mu.Lock()
	tool := e.tool
	e.mu.Unlock()
	if tool == nil {
		return Output{ExitCode: -1}, errorwrapper.NewError("%s invoker used before Prepare", e.kind)
	}

	res, err := tool.Run(ctx, e.Args(url), nil)
	out := Output{ExitCode: -1}
	if res != nil {
		out = Output{Lines: res.Lines, Stderr: res.Stderr, ExitCode: res.ExitCode}
	}
	return out, err
}
