// Package preflight provides readiness checks for the filesystem paths and
// external tools the scan processor depends on.
//
// These checks run in two contexts:
//   - The CLI "scanproc check" command renders every result as a table.
//   - Processor runs log StageHealth for the selected stages before the
//     first external call so a missing tool is visible up front.
//
// Checks never fail a run on their own; the stage that needs the tool does.
package preflight
