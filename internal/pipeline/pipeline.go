// Package pipeline chains the liveness filter and the two extractor stages
// and records every run.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/monsterinc/jshunter/internal/config"
	"github.com/monsterinc/jshunter/internal/datastore"
	"github.com/monsterinc/jshunter/internal/dispatcher"
	"github.com/monsterinc/jshunter/internal/extractor"
	"github.com/monsterinc/jshunter/internal/prober"
	"github.com/rs/zerolog"
)

// HistoryRecorder persists runs. *datastore.HistoryStore implements it.
type HistoryRecorder interface {
	RecordRunStart(ctx context.Context, runID, inputPath, outputDir string, startedAt time.Time) (int64, error)
	RecordItemFailures(ctx context.Context, failures []datastore.ItemFailure) error
	RecordRunCompletion(ctx context.Context, runID string, finishedAt time.Time, status string, counts datastore.RunCounts) error
}

// Pipeline runs the three stages against one configuration.
type Pipeline struct {
	cfg       config.PipelineConfig
	prober    prober.Prober
	endpoints extractor.Invoker
	secrets   extractor.Invoker
	gate      dispatcher.Gate
	history   HistoryRecorder
	stdout    io.Writer
	failures  *FailureLog
	logger    zerolog.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithProber replaces the prober built from prober_config
func WithProber(p prober.Prober) Option {
	return func(pl *Pipeline) { pl.prober = p }
}

// WithEndpointInvoker replaces the invoker built from endpoint_config
func WithEndpointInvoker(inv extractor.Invoker) Option {
	return func(pl *Pipeline) { pl.endpoints = inv }
}

// WithSecretInvoker replaces the invoker built from secret_config
func WithSecretInvoker(inv extractor.Invoker) Option {
	return func(pl *Pipeline) { pl.secrets = inv }
}

// WithGate holds dispatch workers back while the system is overloaded
func WithGate(g dispatcher.Gate) Option {
	return func(pl *Pipeline) { pl.gate = g }
}

// WithHistory records runs in h
func WithHistory(h HistoryRecorder) Option {
	return func(pl *Pipeline) { pl.history = h }
}

// WithStdout sets where secret findings are echoed
func WithStdout(w io.Writer) Option {
	return func(pl *Pipeline) { pl.stdout = w }
}

// New builds a pipeline. Collaborators not supplied through options are
// created from cfg; no tool is resolved until a stage has work for it.
func New(cfg *config.GlobalConfig, logger zerolog.Logger, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg.PipelineConfig,
		stdout:   os.Stdout,
		failures: NewFailureLog(cfg.PipelineConfig.FailuresPath()),
		logger:   logger.With().Str("component", "Pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	var err error
	if p.prober == nil {
		if p.prober, err = prober.New(cfg.ProberConfig, logger); err != nil {
			return nil, err
		}
	}
	if p.endpoints == nil {
		if p.endpoints, err = extractor.New(extractor.KindEndpoints, cfg.EndpointConfig, logger); err != nil {
			return nil, err
		}
	}
	if p.secrets == nil {
		if p.secrets, err = extractor.New(extractor.KindSecrets, cfg.SecretConfig, logger); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pipeline) newDispatcher(stage string, invoker extractor.Invoker) *dispatcher.Dispatcher {
	var opts []dispatcher.Option
	if p.gate != nil {
		opts = append(opts, dispatcher.WithGate(p.gate))
	}
	return dispatcher.New(dispatcher.Config{
		Stage:       stage,
		Concurrency: p.cfg.Concurrency,
		ItemTimeout: p.cfg.ItemTimeout(),
	}, invoker, p.logger, opts...)
}
