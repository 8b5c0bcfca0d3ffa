// Package recorder writes audit records to storage asynchronously.
// Records are enqueued on a buffered channel and written by a
// background worker so the request path never blocks on storage.
package recorder
