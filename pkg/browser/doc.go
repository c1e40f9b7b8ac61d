// Package browser manages the shared connection to a remote browser-control
// endpoint and the per-request browsing contexts opened on it.
//
// The package is built around three core concepts:
//
//  1. Connector: owns the single process-wide connection, dialing with a
//     retry policy and recovering from disconnects.
//  2. Gate: FIFO admission control bounding how many extractions share the
//     connection at once.
//  3. Workspace: one isolated browsing context per request, with resource
//     filtering, navigation fallback, and guaranteed teardown.
//
// # Connection lifecycle
//
// At most one live connection exists at a time. Ensure dials only when no
// healthy connection is present; callers arriving mid-dial wait for that
// attempt's outcome instead of starting their own. When the remote side
// drops the connection, the shared handle is cleared and the next caller
// triggers a fresh dial.
//
// # Workspaces
//
// A Workspace is exclusively owned by the request that opened it and must
// never outlive it. Close is idempotent and swallows errors: by the time a
// workspace is torn down the request outcome is already determined.
package browser
