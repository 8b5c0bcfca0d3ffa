package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"mercator-hq/callisto/pkg/client"
	"mercator-hq/callisto/pkg/proxy/types"
	"mercator-hq/callisto/pkg/session"
)

// ExecutorMetrics receives per-request metrics. The telemetry
// collector satisfies this.
type ExecutorMetrics interface {
	RecordRequest(method, outcome string, duration time.Duration, redirects int)
}

type nopExecutorMetrics struct{}

func (nopExecutorMetrics) RecordRequest(string, string, time.Duration, int) {}

// Executor runs proxied requests end to end: envelope validation,
// session acquisition, redirect traversal, and response normalization.
type Executor struct {
	store    *session.Store
	follower *RedirectFollower
	metrics  ExecutorMetrics
	logger   *slog.Logger
}

// NewExecutor creates an executor. metrics may be nil.
func NewExecutor(store *session.Store, follower *RedirectFollower, metrics ExecutorMetrics) *Executor {
	if metrics == nil {
		metrics = nopExecutorMetrics{}
	}
	return &Executor{
		store:    store,
		follower: follower,
		metrics:  metrics,
		logger:   slog.Default().With("component", "proxy.executor"),
	}
}

// Execute performs the proxied request. Errors are always
// *RequestError; KindBadRequest covers validation, capacity, and the
// redirect limit, KindExecution covers transport failures.
func (e *Executor) Execute(ctx context.Context, req *types.ProxyRequest) (*types.ProxyResponse, error) {
	start := time.Now()

	if errResp := req.Validate(); errResp != nil {
		e.metrics.RecordRequest(req.Method, "bad_request", time.Since(start), 0)
		return nil, &RequestError{
			Kind:    KindBadRequest,
			Message: errResp.Error.Message,
			Code:    errResp.Error.Code,
			Param:   errResp.Error.Param,
		}
	}

	// Ephemerality is decided exactly once, here. Every later branch
	// consults this boolean, never the session id again.
	ephemeral := req.SessionID == nil

	var (
		cli       client.Client
		sessionID string
		err       error
	)
	if ephemeral {
		cli, err = e.store.AcquireEphemeral()
		if err != nil {
			e.metrics.RecordRequest(req.Method, "error", time.Since(start), 0)
			return nil, executionError("failed to create client", err)
		}
		defer func() {
			if closeErr := cli.Close(); closeErr != nil {
				e.logger.Warn("Failed to close ephemeral client", "error", closeErr)
			}
		}()
	} else {
		sessionID = *req.SessionID
		cli, err = e.store.Acquire(sessionID)
		if err != nil {
			var capErr *session.CapacityError
			if errors.As(err, &capErr) {
				e.metrics.RecordRequest(req.Method, "bad_request", time.Since(start), 0)
				return nil, &RequestError{
					Kind:    KindBadRequest,
					Message: capErr.Error(),
					Code:    types.CodeSessionCapacity,
					Err:     err,
				}
			}
			e.metrics.RecordRequest(req.Method, "error", time.Since(start), 0)
			return nil, executionError("failed to acquire session", err)
		}
	}

	var body []byte
	if req.Body != nil {
		body = req.Body.Bytes()
	}
	overrides := req.Headers
	if req.Body != nil && !req.Body.IsRaw() {
		// Structured bodies go out as JSON unless the caller says otherwise
		if _, ok := overrides["Content-Type"]; !ok {
			overrides = withContentType(overrides, "application/json")
		}
	}

	result, err := e.follower.Follow(ctx, cli, FollowInput{
		Method:    req.Method,
		URL:       req.URL,
		Overrides: overrides,
		Body:      body,
		Proxy:     req.Proxy,
	})
	if err != nil {
		var limitErr *RedirectLimitError
		if errors.As(err, &limitErr) {
			e.metrics.RecordRequest(req.Method, "bad_request", time.Since(start), len(limitErr.Chain))
			return nil, &RequestError{
				Kind:    KindBadRequest,
				Message: limitErr.Error(),
				Code:    types.CodeTooManyRedirects,
				Err:     err,
			}
		}
		e.metrics.RecordRequest(req.Method, "error", time.Since(start), 0)
		return nil, executionError("request failed", err)
	}

	elapsed := time.Since(start)
	e.metrics.RecordRequest(req.Method, "success", elapsed, result.RedirectCount)

	return &types.ProxyResponse{
		StatusCode:    result.Response.StatusCode,
		Headers:       types.NormalizeHeaders(result.Response.Header),
		Body:          parseBody(result.Response.Body),
		SessionID:     sessionID,
		ElapsedMS:     elapsed.Milliseconds(),
		RedirectCount: result.RedirectCount,
		RedirectChain: result.Chain,
		FinalURL:      result.FinalURL,
	}, nil
}

// parseBody decodes the response body as JSON, falling back to the raw
// text when it is not valid JSON.
func parseBody(body []byte) any {
	if len(body) == 0 {
		return ""
	}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed
	}
	return string(body)
}

// withContentType copies the override map and sets Content-Type.
func withContentType(overrides map[string]string, contentType string) map[string]string {
	out := make(map[string]string, len(overrides)+1)
	for key, value := range overrides {
		out[key] = value
	}
	out["Content-Type"] = contentType
	return out
}
