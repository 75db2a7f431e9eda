// Package sweep periodically promotes due scheduled content to published.
//
// A Scheduler registers one "@every" job on a robfig/cron runner. Each tick
// reads the items whose schedule has arrived, asks the publication package for
// the promotion, and applies it through the store's conditional update with
// the status and version the tick observed. An item that an editor changed in
// the meantime is left alone and counted as a conflict. Ticks never overlap:
// a tick that would start while another is running is skipped and counted.
package sweep
