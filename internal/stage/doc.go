// Package stage names the four pipeline stages and resolves the user's
// selection (--all, --from, --action) into an immutable Selection.
package stage
