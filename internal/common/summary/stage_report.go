package summary

import "time"

// Stage names used across reports, logs and the failure log
const (
	StageProbe     = "probe"
	StageEndpoints = "endpoints"
	StageSecrets   = "secrets"
)

// FailedItem describes one per-URL invocation that produced no output
type FailedItem struct {
	URL      string
	ExitCode int
	Reason   string
}

// StageReport holds the outcome of a single stage.
type StageReport struct {
	Stage       string
	InputCount  int // URLs handed to the stage
	OutputCount int // lines written to OutputPath
	Succeeded   int
	Failed      int
	FailedItems []FailedItem
	Duration    time.Duration
	OutputPath  string
	Err         error // fatal stage error, nil when the stage completed
	Skipped     bool  // stage never ran because an earlier one failed
}

// Completed reports whether the stage ran to the end
func (sr StageReport) Completed() bool {
	return !sr.Skipped && sr.Err == nil
}

// HasIssues reports whether any item of the stage failed
func (sr StageReport) HasIssues() bool {
	return sr.Failed > 0
}

// StageReportBuilder handles building stage reports
type StageReportBuilder struct {
	report StageReport
}

// NewStageReportBuilder creates a new stage report builder
func NewStageReportBuilder(stage string) *StageReportBuilder {
	return &StageReportBuilder{report: StageReport{Stage: stage}}
}

func (b *StageReportBuilder) WithInputCount(n int) *StageReportBuilder {
	b.report.InputCount = n
	return b
}

func (b *StageReportBuilder) WithOutputCount(n int) *StageReportBuilder {
	b.report.OutputCount = n
	return b
}

func (b *StageReportBuilder) WithOutputPath(path string) *StageReportBuilder {
	b.report.OutputPath = path
	return b
}

func (b *StageReportBuilder) WithDuration(d time.Duration) *StageReportBuilder {
	b.report.Duration = d
	return b
}

// WithSucceeded sets the number of items that produced output
func (b *StageReportBuilder) WithSucceeded(n int) *StageReportBuilder {
	b.report.Succeeded = n
	return b
}

// AddFailedItem records one failed item and bumps the failure count
func (b *StageReportBuilder) AddFailedItem(item FailedItem) *StageReportBuilder {
	b.report.FailedItems = append(b.report.FailedItems, item)
	b.report.Failed = len(b.report.FailedItems)
	return b
}

func (b *StageReportBuilder) WithError(err error) *StageReportBuilder {
	b.report.Err = err
	return b
}

// Build returns the constructed stage report
func (b *StageReportBuilder) Build() StageReport {
	return b.report
}

// SkippedStage returns the report of a stage that never ran
func SkippedStage(stage string) StageReport {
	return StageReport{Stage: stage, Skipped: true}
}
