package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rollcall/internal/adapters/http/perf"
)

// newTestMux builds the full handler chain against a fresh mock store.
// The rate limit is raised so sequential test requests never trip it.
func newTestMux(t *testing.T, store *mockTrackerStore) http.Handler {
	t.Helper()
	prevLimit := RateLimitPerSecond
	RateLimitPerSecond = 1000
	t.Cleanup(func() { RateLimitPerSecond = prevLimit })

	return NewMux(t.TempDir(), &Stores{Tracker: store}, perf.NewCollector(100))
}

// TestMux_AddThenMarkThenSummary drives the full request path through the
// middleware chain: add a student, mark attendance, read the summary back.
func TestMux_AddThenMarkThenSummary(t *testing.T) {
	mux := newTestMux(t, newMockTrackerStore())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/add_student", `{"name":"Alice"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("add_student status = %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/mark_attendance", `{"student":"Alice","status":"present","date":"2026-03-01"}`))
	resp := decodeStatus(t, rec)
	if !resp.Success {
		t.Fatalf("mark_attendance failed: %s", resp.Message)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/get_summary", nil))
	var summary summaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got := summary.Summary["Alice"]; got.Present != 1 || got.Total != 1 || got.Percentage != 100.0 {
		t.Errorf("Alice summary = %+v, want {1 1 100}", got)
	}
}

// TestMux_GetEndpointsRespond verifies every read endpoint answers 200 JSON.
func TestMux_GetEndpointsRespond(t *testing.T) {
	mux := newTestMux(t, newMockTrackerStore("Alice"))

	for _, path := range []string{"/get_students", "/get_summary", "/get_records", "/healthz", "/debug/perf"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("GET %s Content-Type = %q, want application/json", path, ct)
		}
	}
}

// TestMux_SecurityHeadersApplied verifies the hardening headers reach responses.
func TestMux_SecurityHeadersApplied(t *testing.T) {
	mux := newTestMux(t, newMockTrackerStore())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

// TestMux_JSONPostBypassesCSRF verifies the JSON exemption holds through the
// assembled chain, not just the middleware in isolation.
func TestMux_JSONPostBypassesCSRF(t *testing.T) {
	mux := newTestMux(t, newMockTrackerStore())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/add_student", `{"name":"Bob"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (JSON requests are CSRF-exempt)", rec.Code)
	}
	resp := decodeStatus(t, rec)
	if !resp.Success {
		t.Errorf("success = false, want true. Message: %s", resp.Message)
	}
}

// TestMux_FailureStaysHTTP200 verifies logical failures keep the 200 contract
// end to end.
func TestMux_FailureStaysHTTP200(t *testing.T) {
	mux := newTestMux(t, newMockTrackerStore())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/mark_attendance", `{"student":"Ghost"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeStatus(t, rec)
	if resp.Success {
		t.Error("success = true, want false for unknown student")
	}
	if resp.Message != `Student "Ghost" not found` {
		t.Errorf("message = %q, want %q", resp.Message, `Student "Ghost" not found`)
	}
}
