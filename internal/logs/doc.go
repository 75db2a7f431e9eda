// Package logs reads the daemon log file for "vyomarr logs".
//
// Tail returns the last N lines (optionally only those mentioning one item)
// along with the byte offset to resume from, and Follow polls from that
// offset until the context is cancelled. Memory stays bounded by the line
// limit regardless of file size.
package logs
