package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"multiscan/internal/procrun"
)

// FrameRequest describes one color stream decode.
type FrameRequest struct {
	Stream string
	OutDir string
	// Skip keeps frame 0 and every Skip-th frame after it.
	Skip int
}

// Client runs ffmpeg through a procrun.Runner.
type Client struct {
	binary string
	runner procrun.Runner
}

// New constructs a client. An empty binary defaults to "ffmpeg" on PATH.
func New(binary string, runner procrun.Runner) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if runner == nil {
		runner = procrun.New()
	}
	return &Client{binary: binary, runner: runner}
}

// ExtractFramesCommand builds the decode command. Output frames are numbered
// from zero: <OutDir>/0.png, 1.png, ...
func (c *Client) ExtractFramesCommand(req FrameRequest) procrun.Command {
	skip := req.Skip
	if skip < 1 {
		skip = 1
	}
	return procrun.Command{
		Args: []string{
			c.binary,
			"-i", req.Stream,
			"-vf", fmt.Sprintf(`select=not(mod(n\,%d))`, skip),
			"-vsync", "vfr",
			"-start_number", "0",
			filepath.Join(req.OutDir, "%d.png"),
		},
		Description: "convert color",
	}
}

// ExtractFrames runs the decode and reports a non-zero exit as an error.
func (c *Client) ExtractFrames(ctx context.Context, logger *slog.Logger, req FrameRequest) error {
	res := c.runner.Run(ctx, logger, c.ExtractFramesCommand(req))
	return procrun.Check(ctx, "ffmpeg", res)
}
