package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"event-analytics/analytics/application"
	"event-analytics/analytics/infra"
)

// unavailableStore simula o armazenamento fora do ar.
type unavailableStore struct{}

var errStoreDown = errors.New("store unavailable")

func (unavailableStore) AddWithScore(context.Context, string, string, int64) error {
	return errStoreDown
}
func (unavailableStore) RemoveByScoreBelow(context.Context, string, int64) error { return errStoreDown }
func (unavailableStore) CountByScoreFrom(context.Context, string, int64) (int64, error) {
	return 0, errStoreDown
}
func (unavailableStore) IncrementField(context.Context, string, string, int64) error {
	return errStoreDown
}
func (unavailableStore) Expire(context.Context, string, time.Duration) error { return errStoreDown }
func (unavailableStore) Fields(context.Context, string) (map[string]string, error) {
	return nil, errStoreDown
}

func newTestHandler(store *infra.MemoryStore, now time.Time, limitPerSec int) *Handler {
	clock := func() time.Time { return now }
	users := application.PresenceSet{Store: store, Window: 5 * time.Minute}
	sessions := application.PresenceSet{Store: store, Window: 30 * time.Minute, TTL: 30 * 120 * time.Minute}
	views := application.Pageviews{Store: store, WindowMinutes: 10}

	return &Handler{
		Limiter:           application.Limiter{Store: store, LimitPerSec: limitPerSec, Now: clock},
		Proc:              application.Processor{Users: users, Sessions: sessions, Views: views},
		Users:             users,
		Sessions:          sessions,
		Views:             views,
		UserWindowMin:     5,
		SessionWindowMin:  30,
		PageviewWindowMin: 10,
		TopPagesLimit:     5,
		Now:               clock,
	}
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

const validEvent = `{
	"timestamp": "2024-03-15T14:30:00Z",
	"user_id": "usr_101",
	"event_type": "page_view",
	"page_url": "/home",
	"session_id": "sess_a"
}`

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(infra.NewMemoryStore(), time.Now(), 100).Routes()

	w, body := doJSON(t, h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body)
	}
}

func TestHandler_IngestThenQueryMetrics(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 30, 0, time.UTC)
	h := newTestHandler(infra.NewMemoryStore(), now, 100).Routes()

	w, body := doJSON(t, h, http.MethodPost, "/events", validEvent)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %v", w.Code, body)
	}
	if body["status"] != "accepted" {
		t.Fatalf("expected accepted, got %v", body)
	}

	w, body = doJSON(t, h, http.MethodGet, "/metrics/active_users", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["active_users"] != float64(1) || body["window_minutes"] != float64(5) {
		t.Fatalf("unexpected active_users payload: %v", body)
	}

	w, body = doJSON(t, h, http.MethodGet, "/metrics/active_sessions?user_id=usr_101", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["active_sessions"] != float64(1) || body["user_id"] != "usr_101" {
		t.Fatalf("unexpected active_sessions payload: %v", body)
	}

	// segundo evento idêntico no mesmo minuto: /home sobe para 2
	if w, _ := doJSON(t, h, http.MethodPost, "/events", validEvent); w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}

	w, body = doJSON(t, h, http.MethodGet, "/metrics/top_pages", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	pages, ok := body["top_pages"].([]any)
	if !ok || len(pages) != 1 {
		t.Fatalf("expected one ranked page, got %v", body)
	}
	first := pages[0].(map[string]any)
	if first["page_url"] != "/home" || first["views"] != float64(2) {
		t.Fatalf("expected /home with 2 views, got %v", first)
	}
}

func TestHandler_IngestRejectsMalformedJSON(t *testing.T) {
	h := newTestHandler(infra.NewMemoryStore(), time.Now(), 100).Routes()

	w, body := doJSON(t, h, http.MethodPost, "/events", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "invalid_json" {
		t.Fatalf("expected invalid_json, got %v", body)
	}
}

func TestHandler_IngestRejectsMissingFields(t *testing.T) {
	h := newTestHandler(infra.NewMemoryStore(), time.Now(), 100).Routes()

	payload := `{"timestamp":"2024-03-15T14:30:00","user_id":"u","event_type":"page_view","page_url":"/x"}`
	w, body := doJSON(t, h, http.MethodPost, "/events", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "invalid_event" {
		t.Fatalf("expected invalid_event, got %v", body)
	}
	details, ok := body["details"].([]any)
	if !ok || len(details) != 1 || details[0] != "session_id is required" {
		t.Fatalf("expected session_id detail, got %v", body)
	}
}

func TestHandler_IngestRejectsMalformedTimestamp(t *testing.T) {
	h := newTestHandler(infra.NewMemoryStore(), time.Now(), 100).Routes()

	payload := `{"timestamp":"yesterday","user_id":"u","event_type":"page_view","page_url":"/x","session_id":"s"}`
	w, body := doJSON(t, h, http.MethodPost, "/events", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "invalid_event" {
		t.Fatalf("expected invalid_event, got %v", body)
	}
}

func TestHandler_IngestRateLimited(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 30, 0, time.UTC)
	h := newTestHandler(infra.NewMemoryStore(), now, 1).Routes()

	if w, _ := doJSON(t, h, http.MethodPost, "/events", validEvent); w.Code != http.StatusAccepted {
		t.Fatalf("expected first event to be accepted, got %d", w.Code)
	}

	w, body := doJSON(t, h, http.MethodPost, "/events", validEvent)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if body["error"] != "rate_limit_exceeded" {
		t.Fatalf("expected rate_limit_exceeded, got %v", body)
	}
}

func TestHandler_ActiveSessionsRequiresUserID(t *testing.T) {
	h := newTestHandler(infra.NewMemoryStore(), time.Now(), 100).Routes()

	w, body := doJSON(t, h, http.MethodGet, "/metrics/active_sessions", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "missing_user_id" {
		t.Fatalf("expected missing_user_id, got %v", body)
	}
}

func TestHandler_TopPagesEmptyWindowIsEmptyList(t *testing.T) {
	h := newTestHandler(infra.NewMemoryStore(), time.Now(), 100).Routes()

	w, body := doJSON(t, h, http.MethodGet, "/metrics/top_pages", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	pages, ok := body["top_pages"].([]any)
	if !ok {
		t.Fatalf("expected top_pages to be a list (not null), got %v", body)
	}
	if len(pages) != 0 {
		t.Fatalf("expected empty list, got %v", pages)
	}
}

func TestHandler_StoreErrorMapsToInternalError(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 30, 0, time.UTC)
	h := newTestHandler(infra.NewMemoryStore(), now, 100)
	h.Users = application.PresenceSet{Store: unavailableStore{}, Window: 5 * time.Minute}
	router := h.Routes()

	w, body := doJSON(t, router, http.MethodGet, "/metrics/active_users", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body["error"] != "internal_error" {
		t.Fatalf("expected internal_error, got %v", body)
	}
}
