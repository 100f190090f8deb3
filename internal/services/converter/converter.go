// Package converter drives the alignment binary that merges device camera
// poses into a Meshroom camera file and reprojects device depth into the
// reconstruction's depth maps. It always runs inside its own directory.
package converter

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"multiscan/internal/procrun"
)

// PoseRequest aligns a structure-from-motion camera file with the device
// trajectory.
type PoseRequest struct {
	InSfm      string
	Trajectory string
	OutSfm     string
	Step       int
}

// SensorDepthRequest aligns the decoded device depth frames with Meshroom's
// depth maps.
type SensorDepthRequest struct {
	InSfm    string
	InExr    string
	InExrAbs string
	OutExr   string
	Step     int
}

// Client runs the converter through a procrun.Runner.
type Client struct {
	binary string
	dir    string
	runner procrun.Runner
}

// New constructs a client. binary is usually the relative "./run.sh" wrapper.
func New(binary, dir string, runner procrun.Runner) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "./run.sh"
	}
	if runner == nil {
		runner = procrun.New()
	}
	return &Client{binary: binary, dir: dir, runner: runner}
}

// KnownSfmPath names the aligned camera file written next to sfmPath:
// cameras.sfm becomes cameras_known.sfm.
func KnownSfmPath(sfmPath string) string {
	ext := filepath.Ext(sfmPath)
	return strings.TrimSuffix(sfmPath, ext) + "_known" + ext
}

func step(n int) string {
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n)
}

// AlignPosesCommand builds the pose alignment invocation.
func (c *Client) AlignPosesCommand(req PoseRequest) procrun.Command {
	return procrun.Command{
		Args: []string{
			c.binary,
			"--in_sfm", req.InSfm,
			"--in_traj", req.Trajectory,
			"--out_sfm", req.OutSfm,
			"--step", step(req.Step),
		},
		Dir:         c.dir,
		Description: "align known poses",
	}
}

// SensorDepthCommand builds the sensor depth alignment invocation.
func (c *Client) SensorDepthCommand(req SensorDepthRequest) procrun.Command {
	return procrun.Command{
		Args: []string{
			c.binary,
			"--in_sfm", req.InSfm,
			"--in_exr", req.InExr,
			"--in_exr_abs", req.InExrAbs,
			"--step", step(req.Step),
			"--out_exr", req.OutExr,
		},
		Dir:         c.dir,
		Description: "align sensor depth",
	}
}

// AlignPoses runs pose alignment and reports a non-zero exit as an error.
func (c *Client) AlignPoses(ctx context.Context, logger *slog.Logger, req PoseRequest) error {
	return procrun.Check(ctx, "converter poses", c.runner.Run(ctx, logger, c.AlignPosesCommand(req)))
}

// AlignSensorDepth runs sensor depth alignment and reports a non-zero exit as an error.
func (c *Client) AlignSensorDepth(ctx context.Context, logger *slog.Logger, req SensorDepthRequest) error {
	return procrun.Check(ctx, "converter sensor depth", c.runner.Run(ctx, logger, c.SensorDepthCommand(req)))
}
