package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/client"
	"mercator-hq/callisto/pkg/proxy"
	"mercator-hq/callisto/pkg/proxy/types"
	"mercator-hq/callisto/pkg/session"
)

// stubExecutor returns a canned response or error.
type stubExecutor struct {
	resp *types.ProxyResponse
	err  error
	got  *types.ProxyRequest
}

func (e *stubExecutor) Execute(ctx context.Context, req *types.ProxyRequest) (*types.ProxyResponse, error) {
	e.got = req
	return e.resp, e.err
}

// stubStore implements SessionStore over a plain map.
type stubStore struct {
	sessions map[string]map[string]string
	max      int
	acquires []string
}

func newStubStore(max int) *stubStore {
	return &stubStore{
		sessions: make(map[string]map[string]string),
		max:      max,
	}
}

func (s *stubStore) Acquire(id string) (client.Client, error) {
	s.acquires = append(s.acquires, id)
	if _, ok := s.sessions[id]; !ok {
		if len(s.sessions) >= s.max {
			return nil, &session.CapacityError{Max: s.max}
		}
		s.sessions[id] = map[string]string{}
	}
	return nil, nil
}

func (s *stubStore) Delete(id string) bool {
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *stubStore) Cookies(id string) (map[string]string, bool) {
	cookies, ok := s.sessions[id]
	return cookies, ok
}

func (s *stubStore) Count() int       { return len(s.sessions) }
func (s *stubStore) MaxSessions() int { return s.max }

// captureRecorder collects audit records.
type captureRecorder struct {
	records []*audit.Record
}

func (r *captureRecorder) Record(ctx context.Context, record *audit.Record) error {
	r.records = append(r.records, record)
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *types.ErrorResponse {
	t.Helper()
	var errResp types.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("error body is not valid JSON: %v", err)
	}
	return &errResp
}

// ==============================
// Proxy handler
// ==============================

func TestProxyHandler_Success(t *testing.T) {
	exec := &stubExecutor{resp: &types.ProxyResponse{
		StatusCode:    200,
		Body:          map[string]any{"ok": true},
		SessionID:     "sess-a",
		RedirectCount: 1,
		FinalURL:      "https://example.com/final",
		ElapsedMS:     42,
	}}
	rec := &captureRecorder{}
	handler := NewProxyHandler(exec, rec)

	body := `{"method":"GET","url":"https://example.com","session_id":"sess-a"}`
	req := httptest.NewRequest(http.MethodPost, "/proxy/request", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp types.ProxyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.StatusCode != 200 || resp.SessionID != "sess-a" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if exec.got == nil || exec.got.URL != "https://example.com" {
		t.Error("executor did not receive the decoded request")
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(rec.records))
	}
	auditRec := rec.records[0]
	if auditRec.StatusCode != 200 || auditRec.SessionID != "sess-a" || auditRec.Ephemeral {
		t.Errorf("unexpected audit record: %+v", auditRec)
	}
	if auditRec.FinalURL != "https://example.com/final" {
		t.Errorf("audit final url = %q", auditRec.FinalURL)
	}
}

func TestProxyHandler_InvalidJSON(t *testing.T) {
	handler := NewProxyHandler(&stubExecutor{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/proxy/request", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	errResp := decodeError(t, w)
	if errResp.Error.Code != types.CodeInvalidJSON {
		t.Errorf("code = %q, want %q", errResp.Error.Code, types.CodeInvalidJSON)
	}
}

func TestProxyHandler_BadRequestError(t *testing.T) {
	exec := &stubExecutor{err: &proxy.RequestError{
		Kind:    proxy.KindBadRequest,
		Message: "url is required",
		Code:    types.CodeMissingField,
		Param:   "url",
	}}
	rec := &captureRecorder{}
	handler := NewProxyHandler(exec, rec)

	req := httptest.NewRequest(http.MethodPost, "/proxy/request", strings.NewReader(`{"method":"GET"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	errResp := decodeError(t, w)
	if errResp.Error.Param != "url" {
		t.Errorf("param = %q, want url", errResp.Error.Param)
	}

	if len(rec.records) != 1 || rec.records[0].ErrorCode != types.CodeMissingField {
		t.Errorf("audit record should carry the error code: %+v", rec.records)
	}
}

func TestProxyHandler_ExecutionErrorIs502(t *testing.T) {
	exec := &stubExecutor{err: &proxy.RequestError{
		Kind:    proxy.KindExecution,
		Message: "request failed: connection refused",
		Code:    types.CodeUpstreamError,
	}}
	handler := NewProxyHandler(exec, nil)

	req := httptest.NewRequest(http.MethodPost, "/proxy/request",
		strings.NewReader(`{"method":"GET","url":"https://down.example.com"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	errResp := decodeError(t, w)
	if errResp.Error.Type != types.ErrorTypeBadGateway {
		t.Errorf("type = %q, want %q", errResp.Error.Type, types.ErrorTypeBadGateway)
	}
}

func TestProxyHandler_EphemeralAudit(t *testing.T) {
	exec := &stubExecutor{resp: &types.ProxyResponse{StatusCode: 204}}
	rec := &captureRecorder{}
	handler := NewProxyHandler(exec, rec)

	req := httptest.NewRequest(http.MethodPost, "/proxy/request",
		strings.NewReader(`{"method":"GET","url":"https://example.com"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(rec.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(rec.records))
	}
	if !rec.records[0].Ephemeral {
		t.Error("request without session id must audit as ephemeral")
	}
}

// ==============================
// Session handlers
// ==============================

func TestSessionCreateHandler(t *testing.T) {
	store := newStubStore(10)
	handler := NewSessionCreateHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/proxy/session/create", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp types.SessionCreateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("session id must be allocated")
	}
	if len(resp.SessionID) != 36 {
		t.Errorf("session id should be a UUID, got %q", resp.SessionID)
	}
	if store.Count() != 1 {
		t.Errorf("store count = %d, want 1", store.Count())
	}
}

func TestSessionCreateHandler_Capacity(t *testing.T) {
	store := newStubStore(0)
	handler := NewSessionCreateHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/proxy/session/create", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	errResp := decodeError(t, w)
	if errResp.Error.Code != types.CodeSessionCapacity {
		t.Errorf("code = %q, want %q", errResp.Error.Code, types.CodeSessionCapacity)
	}
}

func TestSessionDeleteHandler(t *testing.T) {
	store := newStubStore(10)
	store.Acquire("sess-a")
	handler := NewSessionDeleteHandler(store)

	t.Run("existing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/proxy/session/sess-a", nil)
		req.SetPathValue("id", "sess-a")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var resp types.SessionDeleteResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if !resp.Deleted || resp.SessionID != "sess-a" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("absent session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/proxy/session/missing", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		errResp := decodeError(t, w)
		if errResp.Error.Code != types.CodeSessionNotFound {
			t.Errorf("code = %q, want %q", errResp.Error.Code, types.CodeSessionNotFound)
		}
	})
}

func TestSessionCookiesHandler(t *testing.T) {
	store := newStubStore(10)
	store.Acquire("sess-a")
	store.sessions["sess-a"]["token"] = "abc123"
	handler := NewSessionCookiesHandler(store)

	t.Run("existing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/proxy/session/sess-a/cookies", nil)
		req.SetPathValue("id", "sess-a")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var resp types.SessionCookiesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if resp.Cookies["token"] != "abc123" {
			t.Errorf("cookies = %v", resp.Cookies)
		}
	})

	t.Run("absent session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/proxy/session/missing/cookies", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

// ==============================
// Health handler
// ==============================

func TestHealthHandler(t *testing.T) {
	store := newStubStore(100)
	store.Acquire("sess-a")
	store.Acquire("sess-b")
	handler := NewHealthHandler(store, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp types.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("version = %q", resp.Version)
	}
	if resp.ActiveSessions != 2 || resp.MaxSessions != 100 {
		t.Errorf("sessions = %d/%d, want 2/100", resp.ActiveSessions, resp.MaxSessions)
	}
}
