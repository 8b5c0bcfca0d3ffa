/*
Package audit defines the audit trail for proxied requests.

Every proxied request can be recorded as an audit record capturing the
request method and target, the session it ran under, the upstream
outcome, and redirect metadata. Records are written asynchronously so
auditing never blocks the request path.

The package is organized into subpackages:

  - recorder: async record writer with a buffered channel
  - storage: storage backends (in-memory, SQLite)
  - retention: retention policy enforcement with scheduled pruning

This file defines the shared types: Record, Query, and the Storage
interface that backends implement.
*/
package audit
