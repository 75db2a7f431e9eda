// Command vyomarr manages scheduled publication of content items.
//
// Item commands talk to a running daemon over its JSON API and fall back to
// opening the content database directly when no daemon is listening. The
// "daemon" subcommand runs the sweep scheduler and API server in the
// foreground until interrupted.
package main
