package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"multiscan/internal/fileutil"
	"multiscan/internal/logging"
	"multiscan/internal/services"
	"multiscan/internal/services/depthdecode"
	"multiscan/internal/services/ffmpeg"
	"multiscan/internal/stage"
)

const (
	colorFrameExt = ".png"
	depthFrameExt = ".exr"

	reasonNoColorFrames = "no decoded color images (convert failed)"
	reasonNoDepthFrames = "no decoded depth images (convert failed)"
)

// convert decodes the color and depth streams into numbered frames.
func (p *Processor) convert(ctx context.Context, r *run, logger *slog.Logger) error {
	ws := r.workspace
	if !p.selection.Overwrite && fileutil.FolderExists(ws.ColorDir) && fileutil.FolderExists(ws.DepthDir) {
		logger.Info("skipping convert",
			logging.String(logging.FieldEventType, "stage_skipped"),
			logging.String("reason", "decoded frames exist; pass --overwrite to decode again"),
		)
		return nil
	}

	for _, dir := range []string{ws.ColorDir, ws.DepthDir} {
		if err := fileutil.MakeCleanFolder(dir); err != nil {
			return fmt.Errorf("prepare %s: %w", dir, err)
		}
	}

	skip := p.cfg.Processing.SkipStep
	color := r.capture.ColorStream()
	if !fileutil.FileExists(color, "") {
		return fail(stage.Convert, services.ErrInvalidInput, "decode color stream failed", nil)
	}
	if err := p.ffmpeg.ExtractFrames(ctx, logger, ffmpeg.FrameRequest{
		Stream: color,
		OutDir: ws.ColorDir,
		Skip:   skip,
	}); err != nil {
		return fail(stage.Convert, nil, "decode color stream failed", err)
	}

	depth := r.capture.DepthStream()
	if !fileutil.FileExists(depth, "") {
		return fail(stage.Convert, services.ErrInvalidInput, "decode depth stream failed", nil)
	}
	req := depthdecode.Request{
		DepthStream: depth,
		OutDir:      ws.DepthDir,
		Skip:        skip,
	}
	if r.capture.HasConfidence() {
		req.ConfidenceStream = r.capture.ConfidenceStream()
	} else {
		logger.Debug("no confidence stream; depth is not filtered",
			logging.String("path", r.capture.ConfidenceStream()),
		)
	}
	if err := p.depth.Decode(ctx, logger, req); err != nil {
		return fail(stage.Convert, nil, "decode depth stream failed", err)
	}

	colorFrames, err := fileutil.ListFiles(ws.ColorDir, colorFrameExt)
	if err != nil {
		return fmt.Errorf("list color frames: %w", err)
	}
	depthFrames, err := fileutil.ListFiles(ws.DepthDir, depthFrameExt)
	if err != nil {
		return fmt.Errorf("list depth frames: %w", err)
	}
	switch {
	case len(colorFrames) == 0:
		return fail(stage.Convert, services.ErrPostcondition, reasonNoColorFrames, nil)
	case len(depthFrames) == 0:
		return fail(stage.Convert, services.ErrPostcondition, reasonNoDepthFrames, nil)
	case len(colorFrames) != len(depthFrames):
		logger.Debug("frame count mismatch",
			logging.Int("color_frames", len(colorFrames)),
			logging.Int("depth_frames", len(depthFrames)),
		)
		return fail(stage.Convert, services.ErrPostcondition,
			"the number of decoded depth images does not match color images (convert failed)", nil)
	}

	logger.Info("streams decoded",
		logging.String(logging.FieldEventType, "frames_decoded"),
		logging.Int("frames", len(colorFrames)),
		logging.Bool("confidence", req.ConfidenceStream != ""),
	)
	return nil
}
