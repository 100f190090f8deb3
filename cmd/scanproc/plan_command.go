package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"multiscan/internal/config"
	"multiscan/internal/fileutil"
	"multiscan/internal/scan"
	"multiscan/internal/services/ffmpeg"
	"multiscan/internal/stage"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	flags := &processFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a run would do without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, sel, err := flags.resolve(base)
			if err != nil {
				return err
			}
			if strings.TrimSpace(flags.input) == "" {
				return fmt.Errorf("--input is required")
			}
			capture, err := scan.Open(flags.input)
			if err != nil {
				return err
			}
			writePlan(cmd.Context(), cmd.OutOrStdout(), cfg, sel, capture)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func writePlan(ctx context.Context, out io.Writer, cfg config.Config, sel stage.Selection, capture scan.Capture) {
	colorize := shouldColorize(out)
	ws := scan.NewWorkspace(cfg, capture)

	lines := renderSectionHeader("Scan", colorize)
	if err := capture.Validate(); err != nil {
		lines = append(lines, renderStatusLine("Capture", statusError, capture.InvalidMessage(), colorize))
		fmt.Fprintln(out, strings.Join(lines, "\n"))
		return
	}
	lines = append(lines,
		renderStatusLine("Capture", statusOK, capture.Dir, colorize),
		renderStatusLine("Workspace", statusInfo, ws.Root, colorize),
		renderStatusLine("Depth stream", presence(fileutil.FileExists(capture.DepthStream(), "")), capture.DepthStream(), colorize),
		renderStatusLine("Confidence stream", optionalPresence(capture.HasConfidence()), yesNo(capture.HasConfidence()), colorize),
		renderStatusLine("Trajectory", optionalPresence(fileutil.FileExists(capture.Trajectory(), "")), capture.Trajectory(), colorize),
		renderStatusLine("Frames", statusInfo, frameEstimate(ctx, cfg, capture), colorize),
	)
	for _, warning := range sel.Warnings() {
		lines = append(lines, renderStatusLine("Selection", statusWarn, warning, colorize))
	}
	lines = append(lines, "")
	fmt.Fprintln(out, strings.Join(lines, "\n"))
	fmt.Fprintln(out, renderTable(planTable(cfg, sel, ws)))
}

func presence(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}

func optionalPresence(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusWarn
}

// frameEstimate describes how many frames the convert stage will keep, using
// ffprobe when it is available.
func frameEstimate(ctx context.Context, cfg config.Config, capture scan.Capture) string {
	probe, err := ffmpeg.Probe(ctx, cfg.Tools.FFprobe, capture.ColorStream())
	if err != nil {
		return "unknown (ffprobe unavailable)"
	}
	total := probe.FrameCount()
	if total <= 0 {
		return "unknown"
	}
	kept := ffmpeg.SampledFrames(total, cfg.Processing.SkipStep)
	return fmt.Sprintf("%d of %d (every %d)", kept, total, cfg.Processing.SkipStep)
}

func planTable(cfg config.Config, sel stage.Selection, ws scan.Workspace) tableSpec {
	rows := make([][]string, 0, len(stage.Order))
	for _, name := range stage.Order {
		rows = append(rows, []string{stage.Label(name), yesNo(sel.Has(name)), planAction(cfg, sel, ws, name)})
	}
	return tableSpec{
		Title:    "Stages",
		Headers:  []string{"Stage", "Selected", "Action"},
		Rows:     rows,
		MaxWidth: map[int]int{2: 70},
	}
}

func planAction(cfg config.Config, sel stage.Selection, ws scan.Workspace, name stage.Name) string {
	if !sel.Has(name) {
		return "-"
	}
	step := strconv.Itoa(cfg.Processing.SkipStep)
	switch name {
	case stage.Convert:
		if !sel.Overwrite && fileutil.FolderExists(ws.ColorDir) && fileutil.FolderExists(ws.DepthDir) {
			return "skip (decoded frames exist; use --overwrite)"
		}
		return fmt.Sprintf("decode color and depth into %s, %s (step %s)", ws.ColorDir, ws.DepthDir, step)
	case stage.Photogrammetry:
		target := "Publish"
		if sel.KnownPoses {
			target = "StructureFromMotion"
		}
		return fmt.Sprintf("meshroom to %s in %s (cpus %d, gpus %d)", target, ws.ResultDir, cfg.Processing.MaxCPUs, cfg.Processing.MaxGPUs)
	case stage.KnownPoses:
		if !sel.Photogrammetry {
			return "not run (needs photogrammetry)"
		}
		return "align camera poses, rerun meshroom to Publish with poses locked"
	case stage.SensorDepth:
		if !sel.Photogrammetry || !sel.KnownPoses {
			return "not run (needs photogrammetry and knownposes)"
		}
		return fmt.Sprintf("align sensor depth into %s (step %s)", ws.SensorDepthDir(), step)
	default:
		return ""
	}
}
