package summary

import (
	"time"

	"github.com/monsterinc/jshunter/internal/common/contextutils"
	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
)

// RunSummary holds everything reported at the end of a command
type RunSummary struct {
	RunID      string
	Status     RunStatus
	InputPath  string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []StageReport
	Err        error
}

// Duration is the wall time of the run
func (rs RunSummary) Duration() time.Duration {
	if rs.FinishedAt.IsZero() || rs.StartedAt.IsZero() {
		return 0
	}
	return rs.FinishedAt.Sub(rs.StartedAt)
}

// Stage returns the report for the named stage, if the run includes it
func (rs RunSummary) Stage(name string) (StageReport, bool) {
	for _, s := range rs.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// FailedItems counts failed items over every stage
func (rs RunSummary) FailedItems() int {
	total := 0
	for _, s := range rs.Stages {
		total += s.Failed
	}
	return total
}

// DetermineStatus derives the run status from the fatal error and the
// stage reports.
func DetermineStatus(err error, stages []StageReport) RunStatus {
	if err != nil {
		if contextutils.IsCancellation(err) {
			return RunStatusInterrupted
		}
		return RunStatusFailed
	}
	for _, s := range stages {
		if s.HasIssues() {
			return RunStatusCompletedWithIssues
		}
	}
	return RunStatusCompleted
}

// Validate checks the summary before it is rendered or persisted
func (rs RunSummary) Validate() error {
	if rs.RunID == "" {
		return errorwrapper.NewValidationError("run_id", rs.RunID, "run ID is required")
	}
	if rs.Status == "" {
		return errorwrapper.NewValidationError("status", rs.Status, "status is required")
	}
	if rs.Duration() < 0 {
		return errorwrapper.NewValidationError("finished_at", rs.FinishedAt, "run cannot finish before it started")
	}
	for _, s := range rs.Stages {
		if s.InputCount < 0 || s.OutputCount < 0 || s.Failed < 0 || s.Succeeded < 0 {
			return errorwrapper.NewValidationError("stages", s.Stage, "stage counts cannot be negative")
		}
	}
	return nil
}
