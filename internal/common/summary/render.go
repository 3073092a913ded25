package summary

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"
)

// maxListedFailures caps the failed items printed under the table
const maxListedFailures = 20

// Render writes the run summary as a table to w
func Render(w io.Writer, rs RunSummary) error {
	data := pterm.TableData{
		{"Stage", "Input", "Output", "Succeeded", "Failed", "Duration", "File"},
	}
	for _, s := range rs.Stages {
		data = append(data, stageRow(s))
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nRun %s: %s (%s)\n", rs.RunID, statusText(rs.Status), rs.Duration().Round(time.Millisecond)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, table); err != nil {
		return err
	}
	if rs.Err != nil {
		if _, err := fmt.Fprintf(w, "Error: %v\n", rs.Err); err != nil {
			return err
		}
	}
	return renderFailures(w, rs)
}

func stageRow(s StageReport) []string {
	if s.Skipped {
		return []string{s.Stage, "-", "-", "-", "-", "-", "skipped"}
	}
	file := s.OutputPath
	if s.Err != nil {
		file = "failed"
	}
	return []string{
		s.Stage,
		strconv.Itoa(s.InputCount),
		strconv.Itoa(s.OutputCount),
		strconv.Itoa(s.Succeeded),
		strconv.Itoa(s.Failed),
		s.Duration.Round(time.Millisecond).String(),
		file,
	}
}

func renderFailures(w io.Writer, rs RunSummary) error {
	listed := 0
	for _, s := range rs.Stages {
		for _, item := range s.FailedItems {
			if listed == maxListedFailures {
				_, err := fmt.Fprintf(w, "  ... %d more, see failure log\n", rs.FailedItems()-listed)
				return err
			}
			if listed == 0 {
				if _, err := fmt.Fprintln(w, "Failed items:"); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "  [%s] %s (exit %d): %s\n", s.Stage, item.URL, item.ExitCode, item.Reason); err != nil {
				return err
			}
			listed++
		}
	}
	return nil
}

func statusText(status RunStatus) string {
	switch status {
	case RunStatusCompleted:
		return pterm.Green(string(status))
	case RunStatusCompletedWithIssues:
		return pterm.Yellow(string(status))
	case RunStatusFailed, RunStatusInterrupted:
		return pterm.Red(string(status))
	default:
		return string(status)
	}
}
