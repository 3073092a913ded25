package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/datastore"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of runs to show (0 for all)")
	cmd.Flags().Bool("failures", false, "List failed items of each run")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.HistoryConfig.Enabled {
		return errorwrapper.NewValidationError("history_config.enabled", false, "history is disabled")
	}

	log, err := newLogger(cmd, cfg, "")
	if err != nil {
		return err
	}
	defer log.Close()

	store, err := datastore.NewHistoryStore(cfg.HistoryConfig.DBPath, *log.GetZerolog())
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	data := pterm.TableData{{"Run", "Started", "Duration", "Status", "Alive", "Endpoints", "Secrets", "Failed"}}
	for _, r := range runs {
		data = append(data, []string{
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			runDuration(r),
			r.Status,
			strconv.Itoa(r.Alive),
			strconv.Itoa(r.Endpoints),
			strconv.Itoa(r.Secrets),
			strconv.Itoa(r.FailedItems),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, table)

	if showFailures, _ := cmd.Flags().GetBool("failures"); showFailures {
		for _, r := range runs {
			failures, err := store.ListItemFailures(cmd.Context(), r.RunID)
			if err != nil {
				return err
			}
			for _, f := range failures {
				fmt.Fprintf(out, "%s\t%s\t%s\t%d\t%s\n", f.RunID, f.Stage, f.URL, f.ExitCode, f.Reason)
			}
		}
	}
	return nil
}

func runDuration(r datastore.RunRecord) string {
	if r.FinishedAt.IsZero() {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}
