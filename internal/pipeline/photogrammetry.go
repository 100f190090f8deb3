package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"multiscan/internal/fileutil"
	"multiscan/internal/logging"
	"multiscan/internal/meshgraph"
	"multiscan/internal/services"
	"multiscan/internal/services/converter"
	"multiscan/internal/services/meshroom"
	"multiscan/internal/stage"
)

const reasonNoCameraSfm = "no camera sfm file (photogrammetry failed)"

// photogrammetry reconstructs the scene from the decoded color frames. With
// knownposes selected the reconstruction stops at structure-from-motion, the
// device trajectory is merged into the cameras, and Meshroom reruns with
// those poses locked; sensordepth then runs on the second graph.
func (p *Processor) photogrammetry(ctx context.Context, r *run, logger *slog.Logger) error {
	ws := r.workspace
	frames, err := fileutil.ListFiles(ws.ColorDir, colorFrameExt)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("list color frames: %w", err)
	}
	if len(frames) == 0 {
		return fail(stage.Photogrammetry, services.ErrPostcondition, reasonNoColorFrames, nil)
	}

	logger.Info("start processing using meshroom photogrammetry",
		logging.Int("frames", len(frames)),
		logging.Bool("known_poses", p.selection.KnownPoses),
		logging.Int("max_cpus", p.cfg.Processing.MaxCPUs),
		logging.Int("max_gpus", p.cfg.Processing.MaxGPUs),
	)
	if err := fileutil.MakeCleanFolder(ws.ResultDir); err != nil {
		return fmt.Errorf("prepare %s: %w", ws.ResultDir, err)
	}

	batch := meshroom.BatchRequest{
		InputDir:  ws.ColorDir,
		OutputDir: ws.OutputDir(),
		CacheDir:  ws.CacheDir(),
		SaveGraph: ws.GraphFile(),
		ToNode:    meshroom.NodePublish,
	}
	if !p.selection.KnownPoses {
		if err := p.meshroom.RunBatch(ctx, logger, batch); err != nil {
			return fail(stage.Photogrammetry, nil, "photogrammetry failed", err)
		}
		return nil
	}

	batch.ToNode = meshroom.NodeStructureFromMotion
	if err := p.meshroom.RunBatch(ctx, logger, batch); err != nil {
		return fail(stage.Photogrammetry, nil, "photogrammetry failed", err)
	}
	knownCtx := services.WithStage(ctx, string(stage.KnownPoses))
	return p.knownPoses(knownCtx, r, r.stageLogger(knownCtx))
}

func (p *Processor) knownPoses(ctx context.Context, r *run, logger *slog.Logger) error {
	ws := r.workspace
	sfm, err := p.cameraSfm(ws.GraphFile(), ws.CacheDir())
	if err != nil {
		return err
	}
	if sfm == "" {
		return fail(stage.KnownPoses, services.ErrNotFound, reasonNoCameraSfm, nil)
	}

	known := converter.KnownSfmPath(sfm)
	if err := p.converter.AlignPoses(ctx, logger, converter.PoseRequest{
		InSfm:      sfm,
		Trajectory: r.capture.Trajectory(),
		OutSfm:     known,
		Step:       p.cfg.Processing.SkipStep,
	}); err != nil {
		return fail(stage.KnownPoses, nil, "camera pose alignment failed", err)
	}

	if err := p.meshroom.RunKnownPoses(ctx, logger, meshroom.KnownPosesRequest{
		Graph:     ws.GraphFile(),
		SfmFile:   known,
		OutputDir: ws.OutputDir(),
		CacheDir:  ws.CacheDir(),
		SaveGraph: ws.KnownPosesGraphFile(),
	}); err != nil {
		return fail(stage.KnownPoses, nil, "photogrammetry with known poses failed", err)
	}
	logger.Info("known poses applied",
		logging.String(logging.FieldEventType, "known_poses_applied"),
		logging.String("sfm", known),
	)

	if !p.selection.SensorDepth {
		return nil
	}
	depthCtx := services.WithStage(ctx, string(stage.SensorDepth))
	return p.sensorDepth(depthCtx, r, r.stageLogger(depthCtx))
}

func (p *Processor) sensorDepth(ctx context.Context, r *run, logger *slog.Logger) error {
	ws := r.workspace
	graph := ws.KnownPosesGraphFile()
	sfm, err := p.cameraSfm(graph, ws.CacheDir())
	if err != nil {
		return err
	}
	if sfm == "" {
		return fail(stage.SensorDepth, services.ErrNotFound, reasonNoCameraSfm, nil)
	}

	rel, ok, err := meshgraph.DepthMapDirFromFile(graph)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", graph, err)
	}
	if !ok {
		return fail(stage.SensorDepth, services.ErrNotFound, "no depth map dir (photogrammetry failed)", nil)
	}

	out := ws.SensorDepthDir()
	if err := p.converter.AlignSensorDepth(ctx, logger, converter.SensorDepthRequest{
		InSfm:    sfm,
		InExr:    filepath.Join(ws.CacheDir(), rel),
		InExrAbs: ws.DepthDir,
		OutExr:   out,
		Step:     p.cfg.Processing.SkipStep,
	}); err != nil {
		return fail(stage.SensorDepth, nil, "sensor depth alignment failed", err)
	}
	logger.Info("sensor depth aligned",
		logging.String(logging.FieldEventType, "sensor_depth_aligned"),
		logging.String("output", out),
	)
	return nil
}

// cameraSfm resolves the structure-from-motion camera file recorded in graph.
// It returns "" when the graph, node or file is missing; malformed graphs are
// infrastructure errors.
func (p *Processor) cameraSfm(graph, cacheDir string) (string, error) {
	rel, ok, err := meshgraph.CameraSfmPathFromFile(graph)
	if err != nil {
		return "", fmt.Errorf("inspect %s: %w", graph, err)
	}
	if !ok {
		return "", nil
	}
	path := filepath.Join(cacheDir, rel)
	if !fileutil.FileExists(path, "") {
		return "", nil
	}
	return path, nil
}
