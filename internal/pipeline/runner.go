package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/monsterinc/jshunter/internal/common/contextutils"
	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/common/summary"
	"github.com/monsterinc/jshunter/internal/datastore"
)

// AllStages lists every stage in execution order
var AllStages = []string{summary.StageProbe, summary.StageEndpoints, summary.StageSecrets}

// historyTimeout bounds each history write
const historyTimeout = 10 * time.Second

// NewRunID returns an identifier for a run started at t. The random suffix
// keeps runs started within the same millisecond apart.
func NewRunID(t time.Time) string {
	return t.Format("20060102-150405.000") + "-" + uuid.NewString()[:8]
}

// RunAll runs every stage, handing each result to the next
func (p *Pipeline) RunAll(ctx context.Context, runID string) summary.RunSummary {
	return p.Run(ctx, runID, AllStages...)
}

// Run executes the named stages in pipeline order. A stage whose predecessor
// did not run in this invocation reads the alive checkpoint instead. The
// first fatal error stops the run; later stages are reported as skipped.
// Per-item failures never stop the run.
func (p *Pipeline) Run(ctx context.Context, runID string, stages ...string) summary.RunSummary {
	builder := summary.NewRunSummaryBuilder(runID).
		WithInputPath(p.cfg.InputFile).
		WithOutputDir(p.cfg.OutputDir)
	logger := p.logger.With().Str("run_id", runID).Logger()

	if err := validateStages(stages); err != nil {
		return builder.Finish(err)
	}

	logger.Info().Strs("stages", stages).Str("input", p.cfg.InputFile).Str("output_dir", p.cfg.OutputDir).Msg("Starting run")
	recorded := p.recordStart(ctx, runID, builder.StartedAt())

	if err := p.failures.Reset(); err != nil {
		logger.Warn().Err(err).Msg("Could not clear previous failure log")
	}

	var (
		alive    []string
		haveLive bool
		runErr   error
	)
	for _, stage := range AllStages {
		if !slices.Contains(stages, stage) {
			continue
		}
		if runErr != nil {
			builder.AddStage(summary.SkippedStage(stage))
			continue
		}
		if err := contextutils.CheckCancellationWithLog(ctx, logger, "stage "+stage); err != nil {
			runErr = err
			builder.AddStage(summary.SkippedStage(stage))
			continue
		}

		if stage != summary.StageProbe && !haveLive {
			var err error
			if alive, err = p.loadAlive(); err != nil {
				runErr = fmt.Errorf("stage %s: %w", stage, err)
				builder.AddStage(summary.NewStageReportBuilder(stage).WithError(err).Build())
				continue
			}
			haveLive = true
		}

		var report summary.StageReport
		switch stage {
		case summary.StageProbe:
			alive, report = p.Probe(ctx, p.cfg.InputFile)
			haveLive = report.Err == nil
		case summary.StageEndpoints:
			_, report = p.Endpoints(ctx, alive)
		case summary.StageSecrets:
			report = p.Secrets(ctx, alive)
		}
		builder.AddStage(report)

		if report.Err != nil {
			runErr = fmt.Errorf("stage %s: %w", stage, report.Err)
			logger.Error().Err(report.Err).Str("stage", stage).Msg("Stage failed")
		}
	}

	rs := builder.Finish(runErr)
	if err := rs.Validate(); err != nil {
		logger.Warn().Err(err).Msg("Run summary is inconsistent")
	}
	if recorded {
		p.recordFinish(ctx, rs)
	}

	logger.Info().
		Str("status", string(rs.Status)).
		Int("failed_items", rs.FailedItems()).
		Dur("duration", rs.Duration()).
		Msg("Run finished")
	return rs
}

func validateStages(stages []string) error {
	if len(stages) == 0 {
		return errorwrapper.NewValidationError("stages", stages, "no stage selected")
	}
	for _, s := range stages {
		if !slices.Contains(AllStages, s) {
			return errorwrapper.NewValidationError("stages", s, "unknown stage")
		}
	}
	return nil
}

// History writes are detached from ctx so an interrupted run is still
// recorded. Errors are logged and never fail the run. recordStart reports
// whether the run row exists; without it the completion would land on
// another run's row.
func (p *Pipeline) recordStart(ctx context.Context, runID string, startedAt time.Time) bool {
	if p.history == nil {
		return false
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	if _, err := p.history.RecordRunStart(hctx, runID, p.cfg.InputFile, p.cfg.OutputDir, startedAt); err != nil {
		p.logger.Warn().Err(err).Str("run_id", runID).Msg("Failed to record run start")
		return false
	}
	return true
}

func (p *Pipeline) recordFinish(ctx context.Context, rs summary.RunSummary) {
	if p.history == nil {
		return
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	var failures []datastore.ItemFailure
	for _, s := range rs.Stages {
		for _, item := range s.FailedItems {
			failures = append(failures, datastore.ItemFailure{
				RunID:    rs.RunID,
				Stage:    s.Stage,
				URL:      item.URL,
				ExitCode: item.ExitCode,
				Reason:   item.Reason,
			})
		}
	}
	if err := p.history.RecordItemFailures(hctx, failures); err != nil {
		p.logger.Warn().Err(err).Str("run_id", rs.RunID).Msg("Failed to record item failures")
	}

	if err := p.history.RecordRunCompletion(hctx, rs.RunID, rs.FinishedAt, string(rs.Status), RunCounts(rs)); err != nil {
		p.logger.Warn().Err(err).Str("run_id", rs.RunID).Msg("Failed to record run completion")
	}
}

// RunCounts extracts the persisted totals from a summary
func RunCounts(rs summary.RunSummary) datastore.RunCounts {
	counts := datastore.RunCounts{FailedItems: rs.FailedItems()}
	if s, ok := rs.Stage(summary.StageProbe); ok {
		counts.Alive = s.OutputCount
	}
	if s, ok := rs.Stage(summary.StageEndpoints); ok {
		counts.Endpoints = s.OutputCount
	}
	if s, ok := rs.Stage(summary.StageSecrets); ok {
		counts.Secrets = s.OutputCount
	}
	return counts
}
