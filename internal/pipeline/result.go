package pipeline

import (
	"errors"
	"fmt"
	"time"

	"multiscan/internal/services"
	"multiscan/internal/stage"
)

// Status is the terminal state of a run.
type Status string

const (
	// StatusInvalid means the input directory is not a scan capture.
	StatusInvalid Status = "invalid"
	// StatusAborted means a stage failed and the remaining stages were skipped.
	StatusAborted Status = "aborted"
	// StatusProcessed means every selected stage completed.
	StatusProcessed Status = "processed"
)

// Result summarizes one ProcessScanDir call. It is also written to
// <workspace>/run.json.
type Result struct {
	RunID       string       `json:"run_id"`
	Scan        string       `json:"scan"`
	Input       string       `json:"input"`
	Status      Status       `json:"status"`
	FailedStage stage.Name   `json:"failed_stage,omitempty"`
	Message     string       `json:"message"`
	Stages      []stage.Name `json:"stages"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// Duration is the wall-clock time of the run.
func (r Result) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Processed reports whether the run completed.
func (r Result) Processed() bool { return r.Status == StatusProcessed }

func processedMessage(dir string) string {
	return fmt.Sprintf("Scan at %s processed", dir)
}

func abortedMessage(dir, reason string) string {
	return fmt.Sprintf("Scan at %s aborted: %s", dir, reason)
}

// stageFailure carries the operator-facing reason for an aborted run next to
// the classified error.
type stageFailure struct {
	stage  stage.Name
	reason string
	err    error
}

func (f *stageFailure) Error() string { return f.err.Error() }

func (f *stageFailure) Unwrap() error { return f.err }

// fail builds a stage failure. A nil marker defers to cause's own marker, so
// tool errors from procrun.Check stay ErrExternalTool.
func fail(name stage.Name, marker error, reason string, cause error) error {
	var err error
	switch {
	case marker != nil:
		err = services.Wrap(marker, string(name), "", reason, cause)
	case cause != nil:
		err = fmt.Errorf("%s: %w", reason, cause)
	default:
		err = services.Wrap(services.ErrExternalTool, string(name), "", reason, nil)
	}
	return &stageFailure{stage: name, reason: reason, err: err}
}

func asStageFailure(err error) (*stageFailure, bool) {
	var failure *stageFailure
	if errors.As(err, &failure) && services.IsScanFailure(err) {
		return failure, true
	}
	return nil, false
}
