package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"multiscan/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var scanName string
	var limit int
	var clearRuns bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent processing runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled ([history] enabled = false)")
				return nil
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if clearRuns {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s runs from %s\n", humanize.Comma(removed), store.Path())
				return nil
			}

			runs, err := store.Recent(cmd.Context(), scanName, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(historyTable(runs, time.Now())))
			return nil
		},
	}

	cmd.Flags().StringVar(&scanName, "scan", "", "Only show runs for this capture name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&clearRuns, "clear", false, "Delete every recorded run")
	return cmd
}

func historyTable(runs []history.Run, now time.Time) tableSpec {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := run.Status
		if run.FailedStage != "" {
			status = fmt.Sprintf("%s (%s)", run.Status, run.FailedStage)
		}
		rows = append(rows, []string{
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			run.ScanName,
			strings.Join(run.Stages, ","),
			status,
			formatDuration(run.Duration()),
			shortID(run.ID),
		})
	}
	return tableSpec{
		Title:   "Recent runs",
		Headers: []string{"Started", "Scan", "Stages", "Status", "Duration", "Run"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
