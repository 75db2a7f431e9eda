// Package content persists publishable content items in SQLite.
//
// The store is the only place item state is written. Every state change goes
// through ApplyTransition, a single conditional UPDATE that succeeds only when
// the row still carries the status and version the caller observed. Losing
// writers get OutcomeConflict instead of an error, which is how the background
// sweep and editorial commands stay consistent without sharing locks.
//
// Schema changes live in migrations/*.sql and are applied in lexical order on
// Open. Timestamps are stored as fixed-width UTC strings so SQL comparisons
// order the same way time.Time does.
package content
