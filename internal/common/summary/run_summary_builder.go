package summary

import "time"

// RunSummaryBuilder helps in constructing RunSummary objects
type RunSummaryBuilder struct {
	summary RunSummary
}

// NewRunSummaryBuilder creates a builder for a run that starts now
func NewRunSummaryBuilder(runID string) *RunSummaryBuilder {
	return &RunSummaryBuilder{
		summary: RunSummary{
			RunID:     runID,
			Status:    RunStatusStarted,
			StartedAt: time.Now(),
		},
	}
}

func (b *RunSummaryBuilder) WithInputPath(path string) *RunSummaryBuilder {
	b.summary.InputPath = path
	return b
}

func (b *RunSummaryBuilder) WithOutputDir(dir string) *RunSummaryBuilder {
	b.summary.OutputDir = dir
	return b
}

// AddStage appends a stage report in execution order
func (b *RunSummaryBuilder) AddStage(report StageReport) *RunSummaryBuilder {
	b.summary.Stages = append(b.summary.Stages, report)
	return b
}

// StartedAt returns the recorded start time
func (b *RunSummaryBuilder) StartedAt() time.Time {
	return b.summary.StartedAt
}

// Finish stamps the finish time, derives the status from err and the stage
// reports, and returns the summary.
func (b *RunSummaryBuilder) Finish(err error) RunSummary {
	b.summary.FinishedAt = time.Now()
	b.summary.Err = err
	b.summary.Status = DetermineStatus(err, b.summary.Stages)

	out := b.summary
	out.Stages = append([]StageReport(nil), b.summary.Stages...)
	return out
}
