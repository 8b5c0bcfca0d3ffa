package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/proxy"
	"mercator-hq/callisto/pkg/proxy/types"
	"mercator-hq/callisto/pkg/session"
)

// SessionCreateHandler allocates named sessions.
type SessionCreateHandler struct {
	store SessionStore
}

// NewSessionCreateHandler creates a new session-create handler.
func NewSessionCreateHandler(store SessionStore) *SessionCreateHandler {
	return &SessionCreateHandler{store: store}
}

// ServeHTTP implements http.Handler for POST /proxy/session/create.
// A fresh UUID is allocated and the session is created immediately so
// capacity errors surface here rather than on first use.
func (h *SessionCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := uuid.New().String()

	if _, err := h.store.Acquire(sessionID); err != nil {
		var capErr *session.CapacityError
		if errors.As(err, &capErr) {
			errResp := types.NewInvalidRequestError(err.Error(), "", types.CodeSessionCapacity)
			if werr := proxy.WriteErrorResponse(w, errResp); werr != nil {
				slog.ErrorContext(ctx, "failed to write error response", "error", werr)
			}
			return
		}

		slog.ErrorContext(ctx, "session creation failed", "error", err)
		if werr := proxy.WriteErrorResponse(w, types.NewServerError("Failed to create session.")); werr != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	slog.InfoContext(ctx, "session created", "session_id", sessionID)

	resp := &types.SessionCreateResponse{SessionID: sessionID}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write session response", "error", err)
	}
}

// SessionDeleteHandler removes named sessions.
type SessionDeleteHandler struct {
	store SessionStore
}

// NewSessionDeleteHandler creates a new session-delete handler.
func NewSessionDeleteHandler(store SessionStore) *SessionDeleteHandler {
	return &SessionDeleteHandler{store: store}
}

// ServeHTTP implements http.Handler for DELETE /proxy/session/{id}.
func (h *SessionDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	if !h.store.Delete(sessionID) {
		errResp := types.NewNotFoundError("Session not found.", types.CodeSessionNotFound)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	slog.InfoContext(ctx, "session deleted", "session_id", sessionID)

	resp := &types.SessionDeleteResponse{SessionID: sessionID, Deleted: true}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write session response", "error", err)
	}
}

// SessionCookiesHandler exposes a session's current cookie set.
type SessionCookiesHandler struct {
	store SessionStore
}

// NewSessionCookiesHandler creates a new session-cookies handler.
func NewSessionCookiesHandler(store SessionStore) *SessionCookiesHandler {
	return &SessionCookiesHandler{store: store}
}

// ServeHTTP implements http.Handler for GET /proxy/session/{id}/cookies.
// Reading cookies does not refresh the session's TTL.
func (h *SessionCookiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	cookies, ok := h.store.Cookies(sessionID)
	if !ok {
		errResp := types.NewNotFoundError("Session not found.", types.CodeSessionNotFound)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	resp := &types.SessionCookiesResponse{SessionID: sessionID, Cookies: cookies}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write session response", "error", err)
	}
}
