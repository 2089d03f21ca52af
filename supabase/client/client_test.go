package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{URL: srv.URL, APIKey: "anon-key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, srv
}

func TestQueryBuilderParams(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	var rows []map[string]any
	err := c.From("community_posts").
		Select("*").
		Eq("category", "Apoio").
		Order("created_at", false).
		Limit(11).
		Offset(10).
		Get(context.Background(), &rows)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	for _, want := range []string{"select=%2A", "category=eq.Apoio", "order=created_at.desc", "limit=11", "offset=10"} {
		if !containsParam(gotQuery, want) {
			t.Fatalf("expected query to contain %s, got %s", want, gotQuery)
		}
	}
}

func containsParam(query, param string) bool {
	for i := 0; i+len(param) <= len(query); i++ {
		if query[i:i+len(param)] == param {
			return true
		}
	}
	return false
}

func TestSingleRowNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
	})

	var row map[string]any
	err := c.From("community_posts").Select("*").Eq("id", "missing").Single().Get(context.Background(), &row)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetHeadersCarriesKeys(t *testing.T) {
	var apikey, authz string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		apikey = r.Header.Get("apikey")
		authz = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	var rows []map[string]any
	if err := c.From("profiles").Select("*").Get(context.Background(), &rows); err != nil {
		t.Fatalf("get: %v", err)
	}
	if apikey != "anon-key" {
		t.Fatalf("expected apikey header, got %q", apikey)
	}
	if authz != "Bearer anon-key" {
		t.Fatalf("expected bearer auth with api key, got %q", authz)
	}
}

func TestWithAccessTokenOverridesAuthorization(t *testing.T) {
	var authz string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	var rows []map[string]any
	if err := c.WithAccessToken("user-token").From("profiles").Select("*").Get(context.Background(), &rows); err != nil {
		t.Fatalf("get: %v", err)
	}
	if authz != "Bearer user-token" {
		t.Fatalf("expected user token to win, got %q", authz)
	}
}

func TestResilientClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	retry.MaxBackoff = 2 * time.Millisecond
	rc := NewResilientClient(ResilientClientConfig{
		RetryConfig:          retry,
		CircuitBreakerConfig: DefaultCircuitBreakerConfig(),
	})

	c, err := New(Config{URL: srv.URL, APIKey: "anon-key", HTTPClient: rc})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var rows []map[string]any
	if err := c.From("profiles").Select("*").Get(context.Background(), &rows); err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig()
	cfg.FailureThreshold = 2
	cb := NewCircuitBreaker(cfg)

	if err := cb.Allow(); err != nil {
		t.Fatalf("expected closed breaker to allow, got %v", err)
	}
	cb.RecordFailure(errors.New("boom"))
	cb.RecordFailure(errors.New("boom"))

	if err := cb.Allow(); err == nil {
		t.Fatal("expected open breaker to reject")
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open state, got %v", cb.State())
	}
}

func TestResilientClientReplaysBodyOnRetry(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		n := len(bodies)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"p1"}]`))
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	retry.MaxBackoff = 2 * time.Millisecond
	rc := NewResilientClient(ResilientClientConfig{
		RetryConfig:          retry,
		CircuitBreakerConfig: DefaultCircuitBreakerConfig(),
	})

	c, err := New(Config{URL: srv.URL, APIKey: "anon-key", HTTPClient: rc})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := c.From("community_posts").Insert(context.Background(), map[string]any{"title": "x"}, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(bodies))
	}
	if bodies[0] == "" || bodies[1] != bodies[0] {
		t.Fatalf("expected retried request to replay the body, got %q then %q", bodies[0], bodies[1])
	}
}
