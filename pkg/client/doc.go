// Package client defines the outbound HTTP client capability used to
// perform proxied requests, and its net/http implementation.
//
// Each session holds its own Client. A Client issues single requests
// without following redirects (redirect traversal belongs to the proxy
// core), accumulates cookies across requests in a per-client jar, and
// can enumerate the jar's current cookies. Close releases the client's
// resources; a closed client rejects further requests.
//
// The implementation carries a browser identity profile name (for
// example "chrome_133") as an opaque label. Header composition for that
// identity lives in the proxy core; TLS fingerprint emulation is out of
// scope.
package client
