// Package preflight provides readiness checks for filesystem paths and
// network endpoints that vyomarr depends on.
//
// The daemon runs RunAll before acquiring its lock and refuses to start when a
// required check fails. The CLI "vyomarr status" command prints the same
// results so operators can see why a daemon would not start.
package preflight
