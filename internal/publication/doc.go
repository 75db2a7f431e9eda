// Package publication decides publication state transitions for content items.
//
// Every function here is a pure decision over (current state, now, requested
// input): nothing reads the clock, touches storage, or logs. Callers read an
// item, ask this package what the next state should be, and then hand the
// resulting Transition to the content store's conditional update. Keeping the
// rules in one place lets the background sweep and the editorial commands
// agree on what "published" means without sharing any runtime state.
//
// Status is a closed enumeration (draft, scheduled, published). The package
// also owns the record invariants: a schedule exists only while scheduled, and
// a publication timestamp exists only while published.
package publication
