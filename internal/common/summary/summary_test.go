package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineStatus(t *testing.T) {
	clean := NewStageReportBuilder(StageEndpoints).WithInputCount(3).WithSucceeded(3).Build()
	withFailure := NewStageReportBuilder(StageSecrets).
		WithInputCount(3).
		WithSucceeded(2).
		AddFailedItem(FailedItem{URL: "https://a.example/app.js", ExitCode: 1, Reason: "boom"}).
		Build()

	tests := []struct {
		name   string
		err    error
		stages []StageReport
		want   RunStatus
	}{
		{name: "all clean", stages: []StageReport{clean}, want: RunStatusCompleted},
		{name: "no stages", want: RunStatusCompleted},
		{name: "item failure", stages: []StageReport{clean, withFailure}, want: RunStatusCompletedWithIssues},
		{name: "fatal error", err: errorwrapper.ErrToolNotFound, stages: []StageReport{clean}, want: RunStatusFailed},
		{name: "canceled", err: fmt.Errorf("stage endpoints: %w", context.Canceled), want: RunStatusInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineStatus(tt.err, tt.stages))
		})
	}
}

func TestRunStatus_ExitCode(t *testing.T) {
	assert.Equal(t, 0, RunStatusCompleted.ExitCode())
	assert.Equal(t, 0, RunStatusCompletedWithIssues.ExitCode())
	assert.Equal(t, 1, RunStatusFailed.ExitCode())
	assert.Equal(t, 1, RunStatusInterrupted.ExitCode())
}

func TestStageReportBuilder(t *testing.T) {
	report := NewStageReportBuilder(StageSecrets).
		WithInputCount(5).
		WithSucceeded(3).
		AddFailedItem(FailedItem{URL: "u1", ExitCode: 2}).
		AddFailedItem(FailedItem{URL: "u2", ExitCode: -1}).
		WithOutputCount(7).
		WithOutputPath("js_out/js_secrets.txt").
		WithDuration(2 * time.Second).
		Build()

	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.FailedItems, 2)
	assert.True(t, report.HasIssues())
	assert.True(t, report.Completed())

	skipped := SkippedStage(StageSecrets)
	assert.False(t, skipped.Completed())
}

func TestRunSummaryBuilder_Finish(t *testing.T) {
	b := NewRunSummaryBuilder("20260101-120000").
		WithInputPath("js_urls.txt").
		WithOutputDir("js_out").
		AddStage(NewStageReportBuilder(StageProbe).WithInputCount(4).WithOutputCount(2).Build()).
		AddStage(NewStageReportBuilder(StageEndpoints).
			WithInputCount(2).
			WithSucceeded(1).
			AddFailedItem(FailedItem{URL: "u", ExitCode: 1}).
			Build())

	rs := b.Finish(nil)

	assert.Equal(t, RunStatusCompletedWithIssues, rs.Status)
	assert.Equal(t, 1, rs.FailedItems())
	assert.GreaterOrEqual(t, rs.Duration(), time.Duration(0))
	require.NoError(t, rs.Validate())

	probe, ok := rs.Stage(StageProbe)
	require.True(t, ok)
	assert.Equal(t, 2, probe.OutputCount)
	_, ok = rs.Stage(StageSecrets)
	assert.False(t, ok)
}

func TestRunSummary_Validate(t *testing.T) {
	err := RunSummary{Status: RunStatusCompleted}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrInvalidConfiguration)

	now := time.Now()
	err = RunSummary{RunID: "r", Status: RunStatusCompleted, StartedAt: now, FinishedAt: now.Add(-time.Second)}.Validate()
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	b := NewRunSummaryBuilder("run-1").
		AddStage(NewStageReportBuilder(StageProbe).WithInputCount(3).WithOutputCount(2).WithOutputPath("js_out/js_alive.txt").Build()).
		AddStage(NewStageReportBuilder(StageEndpoints).
			WithInputCount(2).
			WithSucceeded(1).
			AddFailedItem(FailedItem{URL: "https://b.example/x.js", ExitCode: 3, Reason: "exit status 3"}).
			Build()).
		AddStage(SkippedStage(StageSecrets))
	rs := b.Finish(errors.New("disk full"))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rs))

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, string(RunStatusFailed))
	assert.Contains(t, out, "js_out/js_alive.txt")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "https://b.example/x.js (exit 3)")
}
