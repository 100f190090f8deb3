// Package depthdecode drives the depth stream decoder script that turns the
// compressed depth (and optional confidence) stream into per-frame EXR maps.
package depthdecode

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"multiscan/internal/procrun"
)

// Options locates the decoder and fixes the output resolution.
type Options struct {
	Python     string
	Script     string
	ScriptsDir string
	Width      int
	Height     int
}

// Request describes one depth stream decode.
type Request struct {
	DepthStream string
	// ConfidenceStream is optional; when set, low-confidence depth is filtered.
	ConfidenceStream string
	OutDir           string
	Skip             int
}

// Client runs the decoder through a procrun.Runner.
type Client struct {
	opts   Options
	runner procrun.Runner
}

// New constructs a decoder client, filling unset options with the device's
// native depth resolution.
func New(opts Options, runner procrun.Runner) *Client {
	if strings.TrimSpace(opts.Python) == "" {
		opts.Python = "python"
	}
	if strings.TrimSpace(opts.Script) == "" {
		opts.Script = "depth2png.py"
	}
	if opts.Width <= 0 {
		opts.Width = 256
	}
	if opts.Height <= 0 {
		opts.Height = 192
	}
	if runner == nil {
		runner = procrun.New()
	}
	return &Client{opts: opts, runner: runner}
}

// Command builds the decoder invocation. It runs inside the scripts
// directory with PYTHONPATH pointing there.
func (c *Client) Command(req Request) procrun.Command {
	skip := req.Skip
	if skip < 1 {
		skip = 1
	}
	args := []string{c.opts.Python, c.opts.Script, "-in", req.DepthStream}
	if req.ConfidenceStream != "" {
		args = append(args, "-in_confi", req.ConfidenceStream)
	}
	args = append(args,
		"-W", strconv.Itoa(c.opts.Width),
		"-H", strconv.Itoa(c.opts.Height),
		"-S", strconv.Itoa(skip),
	)
	if req.ConfidenceStream != "" {
		args = append(args, "-L", "1", "--filter")
	}
	args = append(args, "-o", req.OutDir)

	return procrun.Command{
		Args:        args,
		Dir:         c.opts.ScriptsDir,
		Env:         procrun.PythonPath(c.opts.ScriptsDir),
		Description: "convert depth",
	}
}

// Decode runs the decoder and reports a non-zero exit as an error.
func (c *Client) Decode(ctx context.Context, logger *slog.Logger, req Request) error {
	res := c.runner.Run(ctx, logger, c.Command(req))
	return procrun.Check(ctx, "depth decoder", res)
}
