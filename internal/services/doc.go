// Package services defines shared utilities consumed by the pipeline stages
// and the external tool wrappers beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, scan names, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper, and Classify, which
//     separates recoverable scan failures (invalid input, tool exits,
//     missing outputs) from infrastructure errors that should crash the run.
//
// The subpackages (ffmpeg, depthdecode, meshroom, converter) own the
// command-line contracts of the external tools.
package services
