package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"multiscan/internal/config"
	"multiscan/internal/deps"
	"multiscan/internal/preflight"
	"multiscan/internal/stage"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check directories and external tools",
		Long: "Check verifies that the configured directories are accessible and that " +
			"every external tool each stage invokes can be found. It exits non-zero " +
			"when a required tool is missing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			statuses := preflight.CheckSystemDeps(cfg)
			writeCheckReport(out, cfg, statuses, shouldColorize(out))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, len(missing))
				for i, status := range missing {
					names[i] = status.Name
				}
				return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func writeCheckReport(out io.Writer, cfg config.Config, statuses []deps.Status, colorize bool) {
	lines := renderSectionHeader("Directories", colorize)
	lines = append(lines, directoryLines(preflight.RunAll(cfg), colorize)...)
	lines = append(lines, "")
	fmt.Fprintln(out, strings.Join(lines, "\n"))

	fmt.Fprintln(out, renderTable(dependencyTable(statuses)))
	fmt.Fprintln(out)

	lines = renderSectionHeader("Stages", colorize)
	lines = append(lines, stageHealthLines(preflight.StageHealth(statuses), colorize)...)
	fmt.Fprintln(out, strings.Join(lines, "\n"))
}

func directoryLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}

func dependencyTable(statuses []deps.Status) tableSpec {
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		state := "ready"
		switch {
		case status.Available:
		case status.Optional:
			state = "optional, missing"
		default:
			state = "missing"
		}
		detail := status.Detail
		if detail == "" {
			detail = status.Description
		}
		rows = append(rows, []string{status.Name, status.Command, state, detail})
	}
	return tableSpec{
		Title:    "Tools",
		Headers:  []string{"Tool", "Command", "Status", "Detail"},
		Rows:     rows,
		MaxWidth: map[int]int{1: 60, 3: 50},
	}
}

func stageHealthLines(health []stage.Health, colorize bool) []string {
	lines := make([]string, 0, len(health))
	for _, h := range health {
		if h.Ready {
			lines = append(lines, renderStatusLine(stage.Label(h.Name), statusOK, "Ready", colorize))
			continue
		}
		lines = append(lines, renderStatusLine(stage.Label(h.Name), statusWarn, h.Detail, colorize))
	}
	return lines
}
