// Package types defines the JSON request and response shapes of the
// proxy API: the proxied-request envelope with its string-or-object
// body variant, the normalized response with string-or-list header
// values, and the error response envelope with its HTTP status mapping.
package types
