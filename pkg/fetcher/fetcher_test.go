package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(attempts int) *Client {
	c := New(Options{
		MaxAttempts:       attempts,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	})
	// Keep test runs fast; retry counting is what matters here.
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = 5 * time.Millisecond
	return c
}

func TestGetRetriesTransientStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testClient(6).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Get() body = %q, want %q", body, "ok")
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server saw %d requests, want 3", n)
	}
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(3).Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Get() expected error after retry budget exhausted")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Get() error = %T, want *TransportError", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server saw %d requests, want 3", n)
	}
}

func TestGetHonorsRetryAfter(t *testing.T) {
	var calls int32
	var first time.Time
	var gap time.Duration
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			first = time.Now()
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			gap = time.Since(first)
			w.Write([]byte("ok"))
		}
	}))
	defer srv.Close()

	// Wide backoff window so the server-provided delay is what decides
	// the wait, not the exponential schedule.
	c := New(Options{MaxAttempts: 3, Timeout: 10 * time.Second, RequestsPerSecond: 1000})
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = 30 * time.Second

	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Get() body = %q, want %q", body, "ok")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("server saw %d requests, want 2", n)
	}
	if gap < 900*time.Millisecond {
		t.Errorf("retry came after %v, want at least ~1s from Retry-After", gap)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(6).Get(context.Background(), srv.URL)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Get() error = %v, want *TransportError", err)
	}
	if te.StatusCode != http.StatusNotFound {
		t.Errorf("TransportError.StatusCode = %d, want 404", te.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry on 404)", n)
	}
}

func TestGetSendsBrowserHeaders(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if _, err := testClient(1).Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ua != defaultHeaders["User-Agent"] {
		t.Errorf("User-Agent = %q, want browser-like header", ua)
	}
}

func TestGetDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table><tr><td>x</td></tr></table></body></html>`))
	}))
	defer srv.Close()

	doc, err := testClient(1).GetDocument(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got := doc.Find("td").Text(); got != "x" {
		t.Errorf("parsed document td = %q, want %q", got, "x")
	}
}
