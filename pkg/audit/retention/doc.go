// Package retention enforces retention policies on audit records.
//
// The Pruner deletes records older than a configured number of days
// and caps the total record count. A cron-based scheduler runs the
// pruner automatically (e.g. daily at 3 AM).
package retention
