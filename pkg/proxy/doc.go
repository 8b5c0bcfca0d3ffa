// Package proxy implements the request-forwarding core: browser
// identity header composition, manual redirect traversal over the
// session's client, and the executor that ties validation, session
// acquisition, execution, and response normalization together.
package proxy
