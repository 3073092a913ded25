package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/monsterinc/jshunter/internal/common/summary"
	"github.com/spf13/cobra"
)

// errRunFailed signals a run whose summary was already printed
var errRunFailed = errors.New("run did not complete")

// NewRootCmd creates the root command for jshunter.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jshunter",
		Short: "JavaScript recon pipeline: liveness, endpoints, secrets",
		Long: `jshunter chains three tools over a list of JavaScript URLs:

  1. httpx keeps the URLs answering HTTP 200 (js_alive.txt)
  2. an endpoint extractor runs once per live URL (js_endpoints.txt)
  3. a secret scanner runs once per live URL (js_secrets.txt, echoed to stdout)

Per-URL tool failures are reported in the summary and in js_failures.log
without stopping the run.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file path (default: config.yaml in current or XDG config directory)")
	flags.StringP("input", "i", "", "File with one JavaScript URL per line (default js_urls.txt)")
	flags.StringP("output", "o", "", "Output directory (default js_out)")
	flags.IntP("concurrency", "t", 0, "Maximum concurrent tool invocations per stage (default 10)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.Bool("no-history", false, "Do not record this run in the history database")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewStageCmd(summary.StageProbe))
	cmd.AddCommand(NewStageCmd(summary.StageEndpoints))
	cmd.AddCommand(NewStageCmd(summary.StageSecrets))
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
