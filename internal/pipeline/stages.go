package pipeline

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/common/summary"
	"github.com/monsterinc/jshunter/internal/dispatcher"
	"github.com/monsterinc/jshunter/internal/urlhandler"
)

// Probe reads the URL list at inputPath, deduplicates it and keeps the URLs
// the prober confirms alive. The result is written to the alive checkpoint
// and returned.
func (p *Pipeline) Probe(ctx context.Context, inputPath string) ([]string, summary.StageReport) {
	start := time.Now()
	report := summary.NewStageReportBuilder(summary.StageProbe).WithOutputPath(p.cfg.AlivePath())
	logger := p.logger.With().Str("stage", summary.StageProbe).Logger()

	urls, err := urlhandler.ReadURLsFromFile(inputPath, logger)
	if err != nil {
		return nil, report.WithError(err).WithDuration(time.Since(start)).Build()
	}
	unique := urlhandler.SortUnique(urls)
	report.WithInputCount(len(unique))
	logger.Info().Int("lines", len(urls)).Int("unique", len(unique)).Msg("Deduplicated input")

	lines, err := p.prober.Probe(ctx, unique)
	if err != nil {
		return nil, report.WithError(errorwrapper.WrapError(err, "liveness probe failed")).WithDuration(time.Since(start)).Build()
	}

	alive, rejected := urlhandler.FilterSubset(lines, unique)
	if len(rejected) > 0 {
		logger.Warn().Int("count", len(rejected)).Strs("sample", sample(rejected)).Msg("Discarded prober output not present in the input")
	}

	if err := urlhandler.WriteLines(p.cfg.AlivePath(), alive); err != nil {
		return nil, report.WithError(err).WithDuration(time.Since(start)).Build()
	}

	logger.Info().Int("alive", len(alive)).Str("path", p.cfg.AlivePath()).Msg("Wrote alive URLs")
	return alive, report.
		WithOutputCount(len(alive)).
		WithSucceeded(len(alive)).
		WithDuration(time.Since(start)).
		Build()
}

// Endpoints runs the endpoint extractor once per URL and writes the
// deduplicated, sorted union of the successful outputs.
func (p *Pipeline) Endpoints(ctx context.Context, urls []string) ([]string, summary.StageReport) {
	start := time.Now()
	report := summary.NewStageReportBuilder(summary.StageEndpoints).
		WithInputCount(len(urls)).
		WithOutputPath(p.cfg.EndpointsPath())

	results, err := p.newDispatcher(summary.StageEndpoints, p.endpoints).Run(ctx, urls, nil)
	p.addItems(report, summary.StageEndpoints, results)
	if err != nil {
		return nil, report.WithError(err).WithDuration(time.Since(start)).Build()
	}

	endpoints := urlhandler.SortUnique(dispatcher.Lines(results))
	if err := urlhandler.WriteLines(p.cfg.EndpointsPath(), endpoints); err != nil {
		return nil, report.WithError(err).WithDuration(time.Since(start)).Build()
	}

	p.logger.Info().
		Str("stage", summary.StageEndpoints).
		Int("endpoints", len(endpoints)).
		Str("path", p.cfg.EndpointsPath()).
		Msg("Wrote endpoints")
	return endpoints, report.WithOutputCount(len(endpoints)).WithDuration(time.Since(start)).Build()
}

// Secrets runs the secret scanner once per URL. Each successful item's lines
// are written as one block, in completion order, to the secrets file and,
// when echo is enabled, to stdout. Both sinks receive identical bytes.
func (p *Pipeline) Secrets(ctx context.Context, urls []string) summary.StageReport {
	start := time.Now()
	report := summary.NewStageReportBuilder(summary.StageSecrets).
		WithInputCount(len(urls)).
		WithOutputPath(p.cfg.SecretsPath())

	out, err := urlhandler.CreateAtomic(p.cfg.SecretsPath())
	if err != nil {
		return report.WithError(err).WithDuration(time.Since(start)).Build()
	}
	defer out.Abort()

	var sink io.Writer = out
	if p.cfg.EchoSecrets && p.stdout != nil {
		sink = io.MultiWriter(out, p.stdout)
	}

	findings := 0
	writeBlock := func(res dispatcher.ItemResult) error {
		if !res.Succeeded() || len(res.Lines) == 0 {
			return nil
		}
		findings += len(res.Lines)
		_, err := io.WriteString(sink, strings.Join(res.Lines, "\n")+"\n")
		return err
	}

	results, err := p.newDispatcher(summary.StageSecrets, p.secrets).Run(ctx, urls, writeBlock)
	p.addItems(report, summary.StageSecrets, results)
	if err != nil {
		return report.WithOutputCount(findings).WithError(err).WithDuration(time.Since(start)).Build()
	}

	if err := out.Commit(); err != nil {
		return report.WithError(err).WithDuration(time.Since(start)).Build()
	}

	p.logger.Info().
		Str("stage", summary.StageSecrets).
		Int("findings", findings).
		Str("path", p.cfg.SecretsPath()).
		Msg("Wrote secrets")
	return report.WithOutputCount(findings).WithDuration(time.Since(start)).Build()
}

// addItems folds dispatch results into the report and the failure log
func (p *Pipeline) addItems(report *summary.StageReportBuilder, stage string, results []dispatcher.ItemResult) {
	succeeded := 0
	var failed []summary.FailedItem
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
			continue
		}
		item := summary.FailedItem{URL: r.URL, ExitCode: r.ExitCode, Reason: r.Err.Error()}
		report.AddFailedItem(item)
		failed = append(failed, item)
	}
	report.WithSucceeded(succeeded)

	if err := p.failures.Append(stage, failed); err != nil {
		p.logger.Error().Err(err).Str("stage", stage).Msg("Failed to write failure log")
	}
}

// loadAlive reads the alive checkpoint for stages run on their own
func (p *Pipeline) loadAlive() ([]string, error) {
	lines, err := urlhandler.ReadURLsFromFile(p.cfg.AlivePath(), p.logger)
	if err != nil {
		return nil, err
	}
	return urlhandler.SortUnique(lines), nil
}

func sample(lines []string) []string {
	const n = 5
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
