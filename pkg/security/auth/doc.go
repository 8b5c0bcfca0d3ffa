/*
Package auth provides API key authentication for the proxy API.

This package implements HTTP middleware that validates API keys from a
configured request header against a hot-reloadable key set.

# Basic Usage

Create a validator and middleware:

	validator := auth.NewValidator([]*auth.KeyInfo{
		{Key: "ck-test-1234567890abcdef", Name: "ci"},
	})

	middleware := auth.NewMiddleware(validator, "X-API-Key", "/health", "/metrics")

	// Wrap your handler
	http.Handle("/", middleware.Handle(yourHandler))

# Extracting Key Info

Inside an HTTP handler, retrieve the authenticated key's metadata:

	info, ok := auth.GetKeyInfo(r.Context())
	if ok {
		fmt.Printf("request from %s\n", info.Name)
	}

# Hot Reload

When the configuration file changes, swap the key set atomically
without restarting the server:

	validator.Replace(newKeys)

In-flight requests finish against the set they started with.

# Security Considerations

  - API key values are never logged (only key names)
  - Use HTTPS in production to prevent key interception
  - Generate cryptographically random keys (min 32 bytes)
*/
package auth
