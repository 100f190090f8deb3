// Package pipeline runs one scan capture through the selected stages.
//
// A Processor validates the capture directory, attaches the per-scan
// process.log sink, and walks convert then photogrammetry (whose known-poses
// and sensor-depth branches run inside it). Stages run strictly in order and
// the first failure ends the run. Soft failures (a tool exiting non-zero, a
// missing or inconsistent artifact) become a Result with StatusAborted;
// filesystem and decode problems are returned as errors so the CLI can exit
// non-zero.
package pipeline
