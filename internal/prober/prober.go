// Package prober filters URL lists down to the ones answering HTTP probes.
package prober

import (
	"context"
	"strconv"
	"strings"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/config"
	"github.com/monsterinc/jshunter/internal/httpxrunner"
	"github.com/monsterinc/jshunter/internal/toolrunner"
	"github.com/rs/zerolog"
)

const toolName = "prober"

// Prober returns the subset of urls that answered with the configured status.
// Implementations may return lines in any order and may repeat them.
type Prober interface {
	Probe(ctx context.Context, urls []string) ([]string, error)
	Engine() string
}

// New creates the prober selected by cfg.Engine.
func New(cfg config.ProberConfig, logger zerolog.Logger) (Prober, error) {
	logger = logger.With().Str("component", "Prober").Str("engine", cfg.Engine).Logger()
	switch cfg.Engine {
	case config.EngineExec, "":
		return NewExecProber(cfg, logger), nil
	case config.EngineLibrary:
		return NewLibraryProber(cfg, logger), nil
	default:
		return nil, errorwrapper.NewValidationError("prober_config.engine", cfg.Engine, "unknown prober engine")
	}
}

// ExecProber runs the httpx binary once with every URL on stdin.
type ExecProber struct {
	cfg    config.ProberConfig
	logger zerolog.Logger
}

func NewExecProber(cfg config.ProberConfig, logger zerolog.Logger) *ExecProber {
	return &ExecProber{cfg: cfg, logger: logger}
}

func (p *ExecProber) Engine() string { return config.EngineExec }

// Args returns the command line passed to the prober binary
func (p *ExecProber) Args() []string {
	args := []string{"-mc", strconv.Itoa(p.cfg.StatusCode), "-silent"}
	return append(args, p.cfg.ExtraArgs...)
}

// Probe resolves the binary only when there is something to probe. Any
// non-zero exit is fatal and nothing is returned.
func (p *ExecProber) Probe(ctx context.Context, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	tool, err := toolrunner.Resolve(toolName, p.cfg.Binary, p.logger)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("binary", tool.Path()).
		Int("urls", len(urls)).
		Msg("Probing URLs")

	stdin := strings.NewReader(strings.Join(urls, "\n") + "\n")
	res, err := tool.Run(ctx, p.Args(), stdin)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// LibraryProber drives the httpx runner package in-process.
type LibraryProber struct {
	cfg    config.ProberConfig
	logger zerolog.Logger
}

func NewLibraryProber(cfg config.ProberConfig, logger zerolog.Logger) *LibraryProber {
	return &LibraryProber{cfg: cfg, logger: logger}
}

func (p *LibraryProber) Engine() string { return config.EngineLibrary }

// RunnerConfig maps the prober configuration onto the httpx runner
func (p *LibraryProber) RunnerConfig(urls []string) *httpxrunner.Config {
	rc := httpxrunner.DefaultConfig()
	rc.Targets = urls
	rc.MatchStatusCode = p.cfg.StatusCode
	rc.Timeout = p.cfg.TimeoutSecs
	rc.Retries = p.cfg.Retries
	rc.Threads = p.cfg.Threads
	return rc
}

func (p *LibraryProber) Probe(ctx context.Context, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	r, err := httpxrunner.NewRunnerBuilder(p.logger).WithConfig(p.RunnerConfig(urls)).Build()
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}
