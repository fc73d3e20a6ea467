/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package assistant

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const testKey = "test-key"

type fakeGemini struct {
	mu     sync.Mutex
	bodies []string
	status int
	reply  string
	hang   bool
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	if f.hang {
		<-r.Context().Done()
		return
	}
	if !strings.HasSuffix(r.URL.Path, ":generateContent") {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("x-goog-api-key") != testKey && r.URL.Query().Get("key") != testKey {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"missing key","status":"UNAUTHENTICATED"}}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"denied","status":"PERMISSION_DENIED"}}`, f.status)
		return
	}
	fmt.Fprint(w, f.reply)
}

func (f *fakeGemini) Bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

func newTestService(t *testing.T, f *fakeGemini, key string, search bool) *Service {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(context.Background(), Config{
		APIKey:        key,
		EnableSearch:  search,
		BaseURL:       srv.URL + "/",
		HTTPClient:    srv.Client(),
		HealthTimeout: 200 * time.Millisecond,
	})
}

const twoParts = `{"candidates":[{"content":{"role":"model","parts":[{"text":"The Aurora MR "},{"text":"is a starter ship."}]},"finishReason":"STOP","index":0}]}`

func TestQueryJoinsParts(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{reply: twoParts}
	s := newTestService(t, f, testKey, false)
	ans := s.Query(context.Background(), "What is the Aurora MR?")
	if ans.Error || ans.Text != "The Aurora MR is a starter ship." {
		t.Fatalf("unexpected answer: %+v", ans)
	}
	bodies := f.Bodies()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 request, got %d", len(bodies))
	}
	if strings.Contains(bodies[0], "googleSearch") || strings.Contains(bodies[0], "google_search") {
		t.Error("search tool attached although disabled")
	}
	if strings.Contains(bodies[0], "LOOKUP:") {
		t.Error("lookup directive sent although search is disabled")
	}
	if !strings.Contains(bodies[0], "User question: What is the Aurora MR?") {
		t.Errorf("question missing from prompt: %s", bodies[0])
	}
}

func TestQueryWithSearchTool(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{reply: twoParts}
	s := newTestService(t, f, testKey, true)
	if ans := s.Query(context.Background(), "Price of a Carrack?"); ans.Error {
		t.Fatalf("unexpected error: %+v", ans)
	}
	body := f.Bodies()[0]
	if !strings.Contains(body, "googleSearch") && !strings.Contains(body, "google_search") {
		t.Errorf("search tool missing from request: %s", body)
	}
	if !strings.Contains(body, "LOOKUP:") {
		t.Error("lookup directive missing although search is enabled")
	}
}

func TestQueryEmptyAnswer(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{reply: `{"candidates":[{"content":{"role":"model","parts":[]}}]}`}
	s := newTestService(t, f, testKey, false)
	ans := s.Query(context.Background(), "anything")
	if ans.Error || ans.Text != "" {
		t.Fatalf("expected empty successful answer, got %+v", ans)
	}
}

func TestQueryTruncatesQuestion(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{reply: twoParts}
	s := newTestService(t, f, testKey, false)
	s.Query(context.Background(), strings.Repeat("q", 2500))
	body := f.Bodies()[0]
	if !strings.Contains(body, strings.Repeat("q", MAX_QUESTION_CHARS)) || strings.Contains(body, strings.Repeat("q", MAX_QUESTION_CHARS+1)) {
		t.Error("question was not truncated to the limit")
	}
}

func TestQueryHTTPError(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{status: http.StatusForbidden}
	s := newTestService(t, f, testKey, false)
	ans := s.Query(context.Background(), "anything")
	if !ans.Error || ans.Status != http.StatusForbidden || ans.Message != "LLM HTTP 403" {
		t.Fatalf("unexpected answer: %+v", ans)
	}
}

func TestQueryPreconditions(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{reply: twoParts}
	withKey := newTestService(t, f, testKey, false)
	withoutKey := newTestService(t, f, "", false)

	if ans := withKey.Query(context.Background(), "  \t "); !ans.Error || ans.Reason != REASON_EMPTY {
		t.Errorf("expected empty question failure, got %+v", ans)
	}
	if ans := withoutKey.Query(context.Background(), "hello"); !ans.Error || ans.Reason != REASON_NO_KEY {
		t.Errorf("expected no key failure, got %+v", ans)
	}
	if h := withoutKey.Health(context.Background()); h.OK || h.Reason != REASON_NO_KEY {
		t.Errorf("expected no_key health, got %+v", h)
	}
	if n := len(f.Bodies()); n != 0 {
		t.Errorf("preconditions must not reach the network, got %d requests", n)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{reply: twoParts}
	s := newTestService(t, f, testKey, true)
	if h := s.Health(context.Background()); !h.OK {
		t.Fatalf("expected healthy, got %+v", h)
	}
	body := f.Bodies()[0]
	if !strings.Contains(body, `"ping"`) {
		t.Errorf("health prompt missing: %s", body)
	}
}

func TestHealthHTTPError(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{status: http.StatusForbidden}
	s := newTestService(t, f, testKey, false)
	h := s.Health(context.Background())
	if h.OK || h.Reason != "http_403" || h.Status != http.StatusForbidden {
		t.Fatalf("unexpected health: %+v", h)
	}
}

func TestHealthTimeout(t *testing.T) {
	t.Parallel()

	f := &fakeGemini{hang: true}
	s := newTestService(t, f, testKey, false)
	start := time.Now()
	h := s.Health(context.Background())
	elapsed := time.Since(start)
	if h.OK || h.Reason != REASON_TIMEOUT {
		t.Fatalf("expected timeout, got %+v", h)
	}
	if elapsed > 2*time.Second {
		t.Errorf("health check returned after %v, expected close to 200ms", elapsed)
	}
}

func TestHealthTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/"
	srv.Close()

	s := New(context.Background(), Config{APIKey: testKey, BaseURL: base, HealthTimeout: time.Second})
	if h := s.Health(context.Background()); h.OK || h.Reason != REASON_TRANSPORT {
		t.Errorf("expected transport error, got %+v", h)
	}
}
