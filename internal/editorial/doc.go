// Package editorial implements the administrative commands editors run
// against content items: create, publish now, reschedule, and toggle.
//
// Each command reads the item, asks the publication package for the next
// state, and applies it through the store's conditional update using the
// status and version it read. A command that loses a race with the sweep or
// another editor does not retry; it reports OutcomeSuperseded together with
// the item's current state.
package editorial
