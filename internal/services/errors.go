package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrExternalTool  = errors.New("external tool error")
	ErrPostcondition = errors.New("postcondition failed")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Category groups failures by how the pipeline reacts to them.
type Category string

const (
	// CategoryNone means no error was supplied.
	CategoryNone Category = ""
	// CategoryInvalidInput covers captures that are not scan directories or lack raw streams.
	CategoryInvalidInput Category = "invalid_input"
	// CategoryStageFailure covers non-zero exits from external tools.
	CategoryStageFailure Category = "stage_failure"
	// CategoryPostcondition covers missing, empty or inconsistent stage outputs.
	CategoryPostcondition Category = "postcondition"
	// CategoryInfrastructure covers filesystem, configuration and decode failures.
	CategoryInfrastructure Category = "infrastructure"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the category that decides whether the scan is
// aborted with a message or the failure is surfaced to the caller.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrInvalidInput):
		return CategoryInvalidInput
	case errors.Is(err, ErrExternalTool):
		return CategoryStageFailure
	case errors.Is(err, ErrPostcondition), errors.Is(err, ErrNotFound):
		return CategoryPostcondition
	default:
		return CategoryInfrastructure
	}
}

// IsScanFailure reports whether err is a recoverable per-scan failure rather
// than an environment problem.
func IsScanFailure(err error) bool {
	switch Classify(err) {
	case CategoryInvalidInput, CategoryStageFailure, CategoryPostcondition:
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
