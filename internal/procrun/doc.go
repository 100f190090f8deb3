// Package procrun launches the external tools the pipeline delegates to.
//
// A Command carries its own argument vector, working directory, and
// environment overrides, so the orchestrator never changes its own working
// directory. Output from both streams is forwarded line by line into the
// supplied logger while the child runs. Failures to spawn or read from the
// child are reported as FailureCode instead of being returned to the caller.
package procrun
