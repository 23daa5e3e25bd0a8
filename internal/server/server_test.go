package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	compile "github.com/hanpama/graphargs/internal/compile"
	eventbus "github.com/hanpama/graphargs/internal/eventbus"
	events "github.com/hanpama/graphargs/internal/events"
)

const testSDL = `
directive @table(name: String) on FIELD_DEFINITION
directive @limit on ARGUMENT_DEFINITION
directive @eq(column: String) on ARGUMENT_DEFINITION

type Post {
  id: ID
}

type Query {
  posts(first: Int @limit, status: String @eq): [Post] @table(name: "posts")
}
`

func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	c, err := compile.New("schema.graphql", testSDL)
	if err != nil {
		t.Fatalf("compiler: %v", err)
	}
	return New(c, opts...)
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) explainResult {
	t.Helper()
	var res explainResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return res
}

func TestExplainPost(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ posts(first: 2, status: \"pub\") }"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	res := decodeResult(t, w)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(res.Fields))
	}
	want := "SELECT posts.* FROM posts WHERE status = $1 LIMIT 2"
	if res.Fields[0].SQL != want {
		t.Fatalf("sql = %q, want %q", res.Fields[0].SQL, want)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}
}

func TestExplainGetWithVariables(t *testing.T) {
	h := newTestHandler(t)

	q := url.Values{}
	q.Set("query", `query($n: Int) { posts(first: $n) }`)
	q.Set("variables", `{"n": 4}`)
	req := httptest.NewRequest("GET", "/?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	res := decodeResult(t, w)
	if len(res.Fields) != 1 || res.Fields[0].SQL != "SELECT posts.* FROM posts LIMIT 4" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestBatchRequests(t *testing.T) {
	h := newTestHandler(t)

	body := `[{"query":"{ posts(first: 1) }"},{"query":"{ posts(status: \"x\") }"}]`
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var results []explainResult
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Fields[0].SQL != "SELECT posts.* FROM posts LIMIT 1" {
		t.Fatalf("first result: %+v", results[0])
	}
	if results[1].Fields[0].SQL != "SELECT posts.* FROM posts WHERE status = $1" {
		t.Fatalf("second result: %+v", results[1])
	}
}

func TestCompileErrorAnswers200(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ posts("}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	res := decodeResult(t, w)
	if len(res.Errors) != 1 || len(res.Fields) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Errors[0].Locations) == 0 {
		t.Fatalf("expected parse error locations, got %+v", res.Errors[0])
	}
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`not json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid JSON: status %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing query: status %d", w.Code)
	}

	req = httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"query":"{ posts }"}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method: status %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ posts }"}`))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("content type: status %d", w.Code)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(10))

	body := bytes.NewBufferString(`{"query":"{ posts(first: 1) }"}`)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", w.Code)
	}
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, WithCORS("*"))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ posts(first: 1) }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	if pw.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", pw.Code)
	}
	if pw.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight missing CORS header")
	}
	if pw.Header().Get("Access-Control-Allow-Headers") != "X-Test" {
		t.Fatalf("preflight missing allow headers")
	}
}

func TestHTTPEventsPublished(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var starts, finishes int
	var last events.HTTPFinish
	defer eventbus.Subscribe(func(_ context.Context, e events.HTTPStart) { starts++ })()
	defer eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) { finishes++; last = e })()

	h := newTestHandler(t)
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ posts(first: 1) }"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if starts != 1 || finishes != 1 {
		t.Fatalf("events: starts=%d finishes=%d", starts, finishes)
	}
	if last.Status != http.StatusOK {
		t.Fatalf("finish status %d", last.Status)
	}
	if last.Requests != 1 {
		t.Fatalf("finish requests %d, want 1", last.Requests)
	}

	batch := httptest.NewRequest("POST", "/", bytes.NewBufferString(`[{"query":"{ posts(first: 1) }"},{"query":"{ posts(first: 2) }"}]`))
	batch.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), batch)
	if last.Requests != 2 {
		t.Fatalf("batch finish requests %d, want 2", last.Requests)
	}
}
