// Package history keeps a SQLite ledger of pipeline runs so operators can see
// which scans were processed, which stages ran, and where failures happened.
//
// The database lives at <log_dir>/history.db by default and is opened per
// invocation. Schema changes bump schemaVersion; an older database must be
// deleted rather than migrated.
package history
