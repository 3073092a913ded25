// Package httpxrunner drives the httpx probing engine in-process.
package httpxrunner

import (
	"context"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/projectdiscovery/httpx/runner"
	"github.com/rs/zerolog"
)

// Runner wraps the httpx library runner.
type Runner struct {
	logger              zerolog.Logger
	config              *Config
	collector           *ResultCollector
	optionsConfigurator *OptionsConfigurator
}

// Run probes every configured target and returns the URLs answering with
// the configured status code. httpx offers no cancellation hook, so on
// context cancellation Run returns immediately and the enumeration finishes
// in the background.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if len(r.config.Targets) == 0 {
		return nil, nil
	}

	redirectGologger(r.logger)

	options := r.optionsConfigurator.GetOptions()
	if err := options.ValidateOptions(); err != nil {
		return nil, errorwrapper.WrapError(err, "invalid httpx options")
	}
	// ValidateOptions resets the global level for silent mode.
	redirectGologger(r.logger)

	httpxRunner, err := runner.New(options)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to initialize httpx runner")
	}

	r.logger.Info().Int("targets", len(r.config.Targets)).Int("threads", r.config.Threads).Msg("Starting httpx enumeration")

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer httpxRunner.Close()
		httpxRunner.RunEnumeration()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn().Msg("httpx enumeration interrupted")
		return nil, ctx.Err()
	}

	alive := r.collector.AliveURLs(r.config.MatchStatusCode)
	r.logger.Info().Int("alive", len(alive)).Msg("httpx enumeration finished")
	return alive, nil
}
