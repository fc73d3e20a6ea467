/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package status

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Zuplu/sc-overlay/internal/cache"
)

func statusServer(t *testing.T, code int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(code)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchCachesSummary(t *testing.T) {
	t.Parallel()

	srv, hits := statusServer(t, http.StatusOK, `<html><head><title>RSI Status — All Systems Operational</title></head></html>`)
	now := time.Unix(1700000000, 0)
	c := cache.NewMemoryCache[Result](cache.STATUS_TTL).WithClock(func() time.Time { return now })
	s := NewScraper(srv.URL, srv.Client(), c, "test")

	res := s.Fetch(context.Background())
	if res.Error || res.OverallText != "RSI Status — All Systems Operational" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := Classify(res.OverallText); got.State != OK || got.Label != "Operational" {
		t.Errorf("unexpected classification: %+v", got)
	}

	s.Fetch(context.Background())
	if hits.Load() != 1 {
		t.Errorf("expected second call to hit the cache, got %d requests", hits.Load())
	}

	now = now.Add(cache.STATUS_TTL)
	s.Fetch(context.Background())
	if hits.Load() != 2 {
		t.Errorf("expected refetch after ttl, got %d requests", hits.Load())
	}
}

func TestFetchTransportFailureNotCached(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := cache.NewMemoryCache[Result](cache.STATUS_TTL)
	s := NewScraper(url, nil, c, "")
	res := s.Fetch(context.Background())
	if !res.Error || res.Message != SCRAPE_FAILURE || res.Details == "" {
		t.Fatalf("expected structured failure, got %+v", res)
	}
	if _, ok := c.Get(CACHE_KEY); ok {
		t.Error("failures must not be cached")
	}
}

func TestFetchHTTPStatusFailure(t *testing.T) {
	t.Parallel()

	srv, _ := statusServer(t, http.StatusServiceUnavailable, `<title>down</title>`)
	c := cache.NewMemoryCache[Result](cache.STATUS_TTL)
	res := NewScraper(srv.URL, srv.Client(), c, "").Fetch(context.Background())
	if !res.Error || res.Details != "HTTP 503" {
		t.Fatalf("expected HTTP 503 failure, got %+v", res)
	}
	if _, ok := c.Get(CACHE_KEY); ok {
		t.Error("failures must not be cached")
	}
}
