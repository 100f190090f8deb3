// Package main hosts the scanproc CLI entrypoint and command graph.
//
// The root command processes one capture directory: it resolves the stage
// selection from --from/--action/--all, layers flag overrides on top of the
// TOML configuration, and prints the single result line. Scan failures are
// reported on that line with a zero exit status; configuration and
// filesystem problems exit non-zero.
//
// Subcommands cover configuration scaffolding (config init|validate), tool
// and directory readiness (check), the run ledger (history), and a dry run
// of the resolved stage plan (plan).
package main
