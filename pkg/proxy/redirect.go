package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"mercator-hq/callisto/pkg/client"
)

// redirectStatuses are the statuses the follower traverses.
var redirectStatuses = map[int]bool{
	301: true,
	302: true,
	303: true,
	307: true,
	308: true,
}

// FollowInput describes the request the follower starts from.
type FollowInput struct {
	// Method is the normalized HTTP method.
	Method string

	// URL is the absolute starting URL.
	URL string

	// Overrides are the caller's header overrides, reapplied per hop.
	Overrides map[string]string

	// Body is the request body, dropped on a 303 downgrade.
	Body []byte

	// Proxy optionally routes every hop through an upstream proxy.
	Proxy string
}

// FollowResult is the outcome of a completed traversal.
type FollowResult struct {
	// Response is the final hop's response.
	Response *client.Response

	// Chain lists the URLs that redirected, in order.
	Chain []string

	// RedirectCount is the number of redirects followed.
	RedirectCount int

	// FinalURL is the URL that produced the final response.
	FinalURL string
}

// RedirectFollower traverses redirect chains manually over the opaque
// client so cookie accumulation and per-hop header recomposition stay
// under Callisto's control.
type RedirectFollower struct {
	composer *HeaderComposer
	maxHops  int
	logger   *slog.Logger
}

// NewRedirectFollower creates a follower with the given hop limit.
func NewRedirectFollower(composer *HeaderComposer, maxHops int) *RedirectFollower {
	return &RedirectFollower{
		composer: composer,
		maxHops:  maxHops,
		logger:   slog.Default().With("component", "proxy.follower"),
	}
}

// Follow performs the request and traverses redirects up to the hop
// limit. A chain longer than the limit fails with *RedirectLimitError,
// never a truncated success. A redirect without a Location header
// terminates the traversal with that response.
func (rf *RedirectFollower) Follow(ctx context.Context, c client.Client, in FollowInput) (*FollowResult, error) {
	currentURL, err := url.Parse(in.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", in.URL, err)
	}

	method := in.Method
	body := in.Body

	var chain []string
	for {
		resp, err := c.Do(ctx, &client.Request{
			Method:  method,
			URL:     currentURL.String(),
			Headers: rf.composer.Compose(currentURL, in.Overrides),
			Body:    body,
			Proxy:   in.Proxy,
		})
		if err != nil {
			return nil, err
		}

		if !redirectStatuses[resp.StatusCode] {
			return &FollowResult{
				Response:      resp,
				Chain:         chain,
				RedirectCount: len(chain),
				FinalURL:      currentURL.String(),
			}, nil
		}

		location := resp.Header.Get("Location")
		if location == "" {
			// Redirect status without a target terminates the chain
			return &FollowResult{
				Response:      resp,
				Chain:         chain,
				RedirectCount: len(chain),
				FinalURL:      currentURL.String(),
			}, nil
		}

		if len(chain) >= rf.maxHops {
			return nil, &RedirectLimitError{
				MaxHops: rf.maxHops,
				Chain:   append(chain, currentURL.String()),
			}
		}

		next, err := currentURL.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
		}

		chain = append(chain, currentURL.String())
		rf.logger.Info("Following redirect",
			"hop", len(chain),
			"from", currentURL.String(),
			"to", next.String(),
			"status", resp.StatusCode,
		)

		// 303 downgrades any non-GET method to GET and drops the body
		if resp.StatusCode == 303 && method != "GET" {
			rf.logger.Debug("303 redirect, switching method to GET", "was", method)
			method = "GET"
			body = nil
		}

		currentURL = next
	}
}
