// Package logging assembles structured slog loggers and formatting helpers used
// across the scan processor.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can tag log lines
// with run IDs, scan names, and stages. OpenScanLog provides the scoped
// per-scan file sink that mirrors tool output into process.log; TeeLogger
// joins it with the process-wide logger for the lifetime of one scan.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
