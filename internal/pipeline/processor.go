package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"multiscan/internal/config"
	"multiscan/internal/fileutil"
	"multiscan/internal/history"
	"multiscan/internal/logging"
	"multiscan/internal/procrun"
	"multiscan/internal/scan"
	"multiscan/internal/services"
	"multiscan/internal/services/converter"
	"multiscan/internal/services/depthdecode"
	"multiscan/internal/services/ffmpeg"
	"multiscan/internal/services/meshroom"
	"multiscan/internal/stage"
)

// Recorder persists finished runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Processor runs scan captures through the selected stages. A Processor is
// not safe for concurrent use on the same workspace.
type Processor struct {
	cfg       config.Config
	selection stage.Selection
	logger    *slog.Logger
	runner    procrun.Runner
	recorder  Recorder
	now       func() time.Time
	newID     func() string

	ffmpeg    *ffmpeg.Client
	depth     *depthdecode.Client
	meshroom  *meshroom.Client
	converter *converter.Client
}

// Option customizes a Processor.
type Option func(*Processor)

// WithRunner replaces the process runner used for every external tool.
func WithRunner(runner procrun.Runner) Option {
	return func(p *Processor) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// WithRecorder records every finished run.
func WithRecorder(recorder Recorder) Option {
	return func(p *Processor) {
		p.recorder = recorder
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// New constructs a Processor for cfg and sel.
func New(cfg config.Config, sel stage.Selection, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Processor{
		cfg:       cfg,
		selection: sel,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		runner:    procrun.New(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}

	p.ffmpeg = ffmpeg.New(cfg.Tools.FFmpeg, p.runner)
	p.depth = depthdecode.New(depthdecode.Options{
		Python:     cfg.Tools.Python,
		Script:     cfg.Tools.DepthDecoder,
		ScriptsDir: cfg.Paths.ScriptsDir,
		Width:      cfg.Processing.DepthWidth,
		Height:     cfg.Processing.DepthHeight,
	}, p.runner)
	p.meshroom = meshroom.New(meshroom.Options{
		Conda:            cfg.Tools.Conda,
		Env:              cfg.Tools.CondaEnv,
		BatchScript:      cfg.Tools.MeshroomBatch,
		KnownPosesScript: cfg.Tools.MeshroomKnownPoses,
		Dir:              cfg.Paths.PhotogrammetryDir,
		MaxCPUs:          cfg.Processing.MaxCPUs,
		MaxGPUs:          cfg.Processing.MaxGPUs,
	}, p.runner)
	p.converter = converter.New(cfg.Tools.Converter, cfg.Paths.ConverterDir, p.runner)
	return p
}

// Selection returns the stages this processor runs.
func (p *Processor) Selection() stage.Selection { return p.selection }

// run carries per-invocation state through the stages.
type run struct {
	capture   scan.Capture
	workspace scan.Workspace
	// sink writes to the console and process.log; logger adds the run fields.
	sink   *slog.Logger
	logger *slog.Logger
}

// CheckScanDir reports whether dir holds a capture, looking only at file
// metadata. When it does not, the returned Result carries the invalid-scan
// status and message.
func CheckScanDir(dir string) (Result, bool) {
	capture, err := openCapture(dir)
	if err == nil {
		return Result{}, true
	}
	return Result{
		Input:   dir,
		Scan:    capture.Base,
		Status:  StatusInvalid,
		Message: invalidMessage(dir, capture),
	}, false
}

func openCapture(dir string) (scan.Capture, error) {
	capture, err := scan.Open(dir)
	if err != nil {
		return capture, err
	}
	return capture, capture.Validate()
}

func invalidMessage(dir string, capture scan.Capture) string {
	if capture.Input == "" {
		return fmt.Sprintf("path %s not a valid scan dir", dir)
	}
	return capture.InvalidMessage()
}

// ProcessScanDir runs the selected stages against the capture in dir.
//
// The returned error is reserved for infrastructure failures. Invalid input
// and stage failures are reported through Result.Status and Result.Message.
func (p *Processor) ProcessScanDir(ctx context.Context, dir string) (Result, error) {
	result := Result{
		RunID:     p.newID(),
		Input:     dir,
		Stages:    p.selection.Names(),
		StartedAt: p.now(),
	}

	capture, err := openCapture(dir)
	if err != nil {
		result.Scan = capture.Base
		result.Status = StatusInvalid
		result.Message = invalidMessage(dir, capture)
		result.FinishedAt = p.now()
		p.logger.Info(result.Message,
			logging.String(logging.FieldEventType, "scan_invalid"),
			logging.Error(err),
		)
		return result, nil
	}
	result.Scan = capture.Base
	result.Input = capture.Dir

	ctx = services.WithScan(services.WithRunID(ctx, result.RunID), capture.Base)

	scanLog, err := logging.OpenScanLog(capture.LogPath())
	if err != nil {
		return result, fmt.Errorf("open scan log: %w", err)
	}
	defer func() {
		if closeErr := scanLog.Close(); closeErr != nil {
			p.logger.Warn("scan log close failed",
				logging.String(logging.FieldEventType, "scan_log_close_failed"),
				logging.String("path", scanLog.Path()),
				logging.Error(closeErr),
			)
		}
	}()

	sink := scanLog.Attach(p.logger)
	r := &run{
		capture:   capture,
		workspace: scan.NewWorkspace(p.cfg, capture),
		sink:      sink,
		logger:    logging.WithContext(ctx, sink),
	}
	r.logger.Info("scan started",
		logging.String(logging.FieldEventType, "scan_start"),
		logging.String("input", capture.Dir),
		logging.String("workspace", r.workspace.Root),
		logging.String("stages", p.selection.String()),
		logging.Bool("overwrite", p.selection.Overwrite),
		logging.Int("skip_step", p.cfg.Processing.SkipStep),
	)
	for _, warning := range p.selection.Warnings() {
		logging.WarnWithContext(r.logger, warning, "stage_selection",
			logging.String(logging.FieldImpact, "selected stage is skipped"),
			logging.String(logging.FieldErrorHint, "add photogrammetry (and knownposes) to the selection"),
		)
	}

	if err := fileutil.EnsureDir(r.workspace.Root); err != nil {
		return result, fmt.Errorf("ensure workspace: %w", err)
	}
	release := acquireWorkspaceLock(r.logger, r.workspace.LockFile())
	defer release()

	if err := p.loadMetadata(r); err != nil {
		return result, err
	}

	if err := p.runStages(ctx, r); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("scan %s interrupted: %w", capture.Base, ctxErr)
		}
		failure, ok := asStageFailure(err)
		if !ok {
			return result, err
		}
		result.Status = StatusAborted
		result.FailedStage = failure.stage
		result.Message = abortedMessage(capture.Dir, failure.reason)
		result.FinishedAt = p.now()
		logging.ErrorWithContext(r.logger, result.Message, "scan_aborted",
			logging.String("failed_stage", string(failure.stage)),
			logging.Error(err),
		)
		p.finish(ctx, r, result)
		return result, nil
	}

	result.Status = StatusProcessed
	result.Message = processedMessage(capture.Dir)
	result.FinishedAt = p.now()
	r.logger.Info(result.Message,
		logging.String(logging.FieldEventType, "scan_processed"),
		logging.Duration("duration", result.Duration()),
	)
	p.finish(ctx, r, result)
	return result, nil
}

func (p *Processor) loadMetadata(r *run) error {
	meta, found, err := r.capture.LoadMetadata()
	if err != nil {
		return fmt.Errorf("load scan metadata: %w", err)
	}
	if !found {
		logging.WarnWithContext(r.logger, "scan metadata missing", "metadata_missing",
			logging.String("path", r.capture.MetadataFile()),
			logging.String(logging.FieldImpact, "device details are not recorded in the log"),
		)
		return nil
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "metadata_loaded"),
		logging.Strings("keys", meta.Keys()),
	}
	for _, key := range []string{"device", "sceneType", "sceneLabel"} {
		if value := meta.String(key); value != "" {
			attrs = append(attrs, logging.String(key, value))
		}
	}
	r.logger.Info("scan metadata loaded", logging.Args(attrs...)...)
	return nil
}

func (p *Processor) runStages(ctx context.Context, r *run) error {
	if p.selection.Convert {
		if err := p.stage(ctx, r, stage.Convert, p.convert); err != nil {
			return err
		}
	}
	if p.selection.Photogrammetry {
		if err := p.stage(ctx, r, stage.Photogrammetry, p.photogrammetry); err != nil {
			return err
		}
	}
	return nil
}

type stageFunc func(ctx context.Context, r *run, logger *slog.Logger) error

func (p *Processor) stage(ctx context.Context, r *run, name stage.Name, fn stageFunc) error {
	stageCtx := services.WithStage(ctx, string(name))
	logger := r.stageLogger(stageCtx)
	started := p.now()
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx, r, logger); err != nil {
		logger.Debug("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("duration", p.now().Sub(started)),
			logging.Error(err),
		)
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", p.now().Sub(started)),
	)
	return nil
}

// finish writes run.json and records the run in history. Neither failure
// changes the scan outcome.
func (p *Processor) finish(ctx context.Context, r *run, result Result) {
	if err := fileutil.WriteJSON(r.workspace.RunFile(), result); err != nil {
		logging.WarnWithContext(r.logger, "run summary not written", "run_summary_failed",
			logging.String("path", r.workspace.RunFile()),
			logging.Error(err),
		)
	}
	if p.recorder == nil {
		return
	}
	stages := make([]string, len(result.Stages))
	for i, name := range result.Stages {
		stages[i] = string(name)
	}
	err := p.recorder.Record(context.WithoutCancel(ctx), history.Run{
		ID:          result.RunID,
		ScanDir:     result.Input,
		ScanName:    result.Scan,
		Stages:      stages,
		Status:      string(result.Status),
		FailedStage: string(result.FailedStage),
		Message:     result.Message,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	})
	if err != nil {
		logging.WarnWithContext(r.logger, "run history not recorded", "history_record_failed",
			logging.String(logging.FieldImpact, "run is missing from scanproc history"),
			logging.Error(err),
		)
	}
}

func (r *run) stageLogger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, r.sink)
}
