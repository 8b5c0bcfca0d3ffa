package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/proxy"
	"mercator-hq/callisto/pkg/proxy/middleware"
	"mercator-hq/callisto/pkg/proxy/types"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

// ProxyHandler handles proxied request execution.
type ProxyHandler struct {
	executor Executor
	recorder AuditRecorder
}

// NewProxyHandler creates a new proxy request handler.
// recorder may be nil to disable audit recording.
func NewProxyHandler(executor Executor, recorder AuditRecorder) *ProxyHandler {
	return &ProxyHandler{
		executor: executor,
		recorder: recorder,
	}
}

// ServeHTTP implements http.Handler for POST /proxy/request.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	startTime := time.Now()

	var req types.ProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.WarnContext(ctx, "failed to decode proxy request",
			"request_id", requestID,
			"error", err,
		)
		errResp := types.NewInvalidRequestError(
			"Request body is not valid JSON.", "", types.CodeInvalidJSON,
		)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	resp, execErr := h.executor.Execute(ctx, &req)

	h.record(r, &req, resp, execErr, requestID, startTime)

	if execErr != nil {
		slog.WarnContext(ctx, "proxy request failed",
			"request_id", requestID,
			"url", req.URL,
			"error", execErr,
		)
		if err := proxy.WriteErrorResponse(w, proxy.ErrorResponseFor(execErr)); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write proxy response",
			"request_id", requestID,
			"error", err,
		)
	}
}

// record creates the audit entry for a completed proxied request.
func (h *ProxyHandler) record(r *http.Request, req *types.ProxyRequest, resp *types.ProxyResponse, execErr error, requestID string, startTime time.Time) {
	if h.recorder == nil {
		return
	}

	rec := &audit.Record{
		RequestID:   requestID,
		RequestTime: startTime,
		Method:      req.Method,
		TargetURL:   req.URL,
		Ephemeral:   req.SessionID == nil,
		Proxy:       req.Proxy != "",
		APIKeyName:  logging.GetAPIKeyName(r.Context()),
		RemoteAddr:  r.RemoteAddr,
		ElapsedMS:   time.Since(startTime).Milliseconds(),
	}
	if req.SessionID != nil {
		rec.SessionID = *req.SessionID
	}

	if execErr != nil {
		rec.Error = execErr.Error()
		var reqErr *proxy.RequestError
		if errors.As(execErr, &reqErr) {
			rec.ErrorCode = reqErr.Code
		}
	} else if resp != nil {
		rec.StatusCode = resp.StatusCode
		rec.RedirectCount = resp.RedirectCount
		rec.FinalURL = resp.FinalURL
		rec.ElapsedMS = resp.ElapsedMS
	}

	// Drop failures are logged by the recorder itself.
	_ = h.recorder.Record(r.Context(), rec)
}
