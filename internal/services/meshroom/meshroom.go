// Package meshroom drives the Meshroom batch scripts inside their conda
// environment. Both passes run in the photogrammetry directory so the
// relative script paths resolve.
package meshroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"multiscan/internal/procrun"
)

// Terminal nodes accepted by --toNode.
const (
	NodePublish             = "Publish"
	NodeStructureFromMotion = "StructureFromMotion"
)

// Options locates the scripts and caps Meshroom's resource use.
type Options struct {
	Conda            string
	Env              string
	BatchScript      string
	KnownPosesScript string
	Dir              string
	MaxCPUs          int
	MaxGPUs          int
}

// BatchRequest describes a reconstruction from decoded color frames.
type BatchRequest struct {
	InputDir  string
	OutputDir string
	CacheDir  string
	SaveGraph string
	ToNode    string
}

// KnownPosesRequest describes the rerun that injects an aligned camera file
// into an existing graph and locks the reconstructed scene and intrinsics.
type KnownPosesRequest struct {
	Graph     string
	SfmFile   string
	OutputDir string
	CacheDir  string
	SaveGraph string
}

// Client runs Meshroom through a procrun.Runner.
type Client struct {
	opts   Options
	runner procrun.Runner
}

// New constructs a client.
func New(opts Options, runner procrun.Runner) *Client {
	if strings.TrimSpace(opts.Conda) == "" {
		opts.Conda = "conda"
	}
	if strings.TrimSpace(opts.Env) == "" {
		opts.Env = "meshroom"
	}
	if strings.TrimSpace(opts.BatchScript) == "" {
		opts.BatchScript = "./meshroom_batch.sh"
	}
	if strings.TrimSpace(opts.KnownPosesScript) == "" {
		opts.KnownPosesScript = "./meshroom_knownposes.sh"
	}
	if runner == nil {
		runner = procrun.New()
	}
	return &Client{opts: opts, runner: runner}
}

func (c *Client) prefix(script string) []string {
	return []string{c.opts.Conda, "run", "-n", c.opts.Env, script}
}

func (c *Client) resourceOverrides() []string {
	return []string{
		fmt.Sprintf("FeatureExtraction:maxThreads=%d", c.opts.MaxCPUs),
		fmt.Sprintf("DepthMap:nbGPUs=%d", c.opts.MaxGPUs),
	}
}

// BatchCommand builds the first reconstruction pass. ToNode defaults to Publish.
func (c *Client) BatchCommand(req BatchRequest) procrun.Command {
	toNode := req.ToNode
	if toNode == "" {
		toNode = NodePublish
	}
	args := append(c.prefix(c.opts.BatchScript),
		"--input", req.InputDir,
		"--output", req.OutputDir,
		"--cache", req.CacheDir,
		"--save", req.SaveGraph,
		"--paramOverrides",
	)
	args = append(args, c.resourceOverrides()...)
	args = append(args, "--toNode", toNode, "--forceCompute")
	return procrun.Command{
		Args:        args,
		Dir:         c.opts.Dir,
		Env:         procrun.PythonPath(c.opts.Dir),
		Description: "photogrammetry to " + toNode,
	}
}

// KnownPosesCommand builds the known-poses pass, always run to Publish.
func (c *Client) KnownPosesCommand(req KnownPosesRequest) procrun.Command {
	args := append(c.prefix(c.opts.KnownPosesScript),
		"-g", req.Graph,
		"-sfm", req.SfmFile,
		"--output", req.OutputDir,
		"--cache", req.CacheDir,
		"--save", req.SaveGraph,
		"--paramOverrides",
		"StructureFromMotion:lockScenePreviouslyReconstructed=true",
		"StructureFromMotion:lockAllIntrinsics=true",
	)
	args = append(args, c.resourceOverrides()...)
	args = append(args, "--toNode", NodePublish, "--forceCompute")
	return procrun.Command{
		Args:        args,
		Dir:         c.opts.Dir,
		Env:         procrun.PythonPath(c.opts.Dir),
		Description: "photogrammetry with known poses",
	}
}

// RunBatch runs the first pass and reports a non-zero exit as an error.
func (c *Client) RunBatch(ctx context.Context, logger *slog.Logger, req BatchRequest) error {
	return procrun.Check(ctx, "meshroom batch", c.runner.Run(ctx, logger, c.BatchCommand(req)))
}

// RunKnownPoses runs the known-poses pass and reports a non-zero exit as an error.
func (c *Client) RunKnownPoses(ctx context.Context, logger *slog.Logger, req KnownPosesRequest) error {
	return procrun.Check(ctx, "meshroom known poses", c.runner.Run(ctx, logger, c.KnownPosesCommand(req)))
}
