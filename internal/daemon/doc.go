// Package daemon coordinates the long-running vyomarr process.
//
// It wires configuration, the content store, the editorial command service,
// the sweep scheduler, and ntfy notifications into a single lifecycle with
// flock-based locking to prevent multiple instances. The daemon also serves
// the JSON API that the CLI talks to when a daemon is running.
//
// Keep orchestration logic here: publication rules live in
// internal/publication and the command/sweep flows in their own packages,
// while the daemon focuses on startup, shutdown, and high level coordination.
package daemon
