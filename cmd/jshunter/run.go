package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/monsterinc/jshunter/internal/common/summary"
	"github.com/monsterinc/jshunter/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run all three stages",
		Long: `Run deduplicates the input list, keeps the URLs answering HTTP 200,
then extracts endpoints and scans for secrets on every live URL.

Examples:
  jshunter run
  jshunter run -i targets.txt -o out -t 20
  jshunter run --no-history > findings.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd, pipeline.AllStages...)
		},
	}
}

var stageDescriptions = map[string]string{
	summary.StageProbe:     "Deduplicate the input and keep URLs answering HTTP 200",
	summary.StageEndpoints: "Extract endpoints from every URL in the alive checkpoint",
	summary.StageSecrets:   "Scan every URL in the alive checkpoint for secrets",
}

// NewStageCmd creates a command running a single stage from its checkpoint.
func NewStageCmd(stage string) *cobra.Command {
	return &cobra.Command{
		Use:   stage,
		Short: stageDescriptions[stage],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd, stage)
		},
	}
}

// runStages runs the pipeline until it finishes or SIGINT/SIGTERM arrives,
// then prints the summary to stderr.
func runStages(cmd *cobra.Command, stages ...string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := pipeline.NewRunID(time.Now())
	a, err := newApp(cmd, runID)
	if err != nil {
		return err
	}
	defer a.Close()

	a.limiter.Start()
	defer a.limiter.Stop()

	opts := []pipeline.Option{
		pipeline.WithStdout(cmd.OutOrStdout()),
		pipeline.WithGate(a.limiter),
	}
	if a.history != nil {
		opts = append(opts, pipeline.WithHistory(a.history))
	}

	p, err := pipeline.New(a.cfg, a.logger(), opts...)
	if err != nil {
		return err
	}

	rs := p.Run(ctx, runID, stages...)
	if err := summary.Render(cmd.ErrOrStderr(), rs); err != nil {
		a.log.GetZerolog().Warn().Err(err).Msg("Failed to render summary")
	}

	if rs.Status.IsFailure() {
		if ctx.Err() != nil {
			a.log.GetZerolog().Warn().Msg("Run interrupted")
		}
		return errRunFailed
	}
	return nil
}
