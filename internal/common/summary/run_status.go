package summary

// RunStatus defines the possible states of a pipeline run.
type RunStatus string

const (
	RunStatusStarted             RunStatus = "STARTED"
	RunStatusCompleted           RunStatus = "COMPLETED"
	RunStatusCompletedWithIssues RunStatus = "COMPLETED_WITH_ISSUES"
	RunStatusFailed              RunStatus = "FAILED"
	RunStatusInterrupted         RunStatus = "INTERRUPTED"
)

// IsSuccess reports whether every stage completed, item failures included
func (rs RunStatus) IsSuccess() bool {
	return rs == RunStatusCompleted || rs == RunStatusCompletedWithIssues
}

// IsFailure checks if the run ended on a fatal error or interruption
func (rs RunStatus) IsFailure() bool {
	return rs == RunStatusFailed || rs == RunStatusInterrupted
}

// ExitCode maps the status to the process exit code
func (rs RunStatus) ExitCode() int {
	if rs.IsSuccess() {
		return 0
	}
	return 1
}
