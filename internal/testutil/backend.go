package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Response is a canned backend reply.
type Response struct {
	Status int
	Body   any
}

// Request is a recorded backend call.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Backend is a fake API server answering with canned envelopes.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []Request
}

// NewBackend starts a fake backend with a healthy default data set.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{responses: map[string]Response{}}
	b.Set(http.MethodGet, "/api/blog", http.StatusOK, map[string]any{
		"success": true,
		"data": []map[string]any{
			{"id": 1, "title": "Understanding introversion", "slug": "introversion", "excerpt": "<p>Quiet <b>strength</b></p>", "author": "Sara", "published_at": "2024-03-02T10:00:00Z"},
			{"id": 2, "title": "Teams that trust", "slug": "trust", "excerpt": "Trust at work", "created_at": "2024-02-11T09:00:00"},
		},
	})
	b.Set(http.MethodGet, "/api/personality-tests", http.StatusOK, map[string]any{
		"success": true,
		"data": []map[string]any{
			{"id": 1, "slug": "big-five", "name": "Big Five", "tagline": "The classic model", "highlights": []string{"openness"}},
		},
	})
	b.Set(http.MethodGet, "/api/mystery", http.StatusOK, map[string]any{
		"success": true,
		"data": []map[string]any{
			{"id": 7, "name": "The Lighthouse", "slug": "lighthouse", "short_description": "Find your light"},
		},
	})
	b.Set(http.MethodGet, "/api/health", http.StatusOK, map[string]any{
		"status": "healthy", "database": "connected", "environment": "test", "timestamp": "2025-03-02T10:00:00Z",
	})
	b.Set(http.MethodPost, "/api", http.StatusOK, map[string]any{"success": true, "message": "saved", "data": map[string]any{"id": 99}})
	b.Set(http.MethodPost, "/api/auth/login", http.StatusOK, map[string]any{
		"success": true, "token": "user-token", "user": map[string]any{"userId": 5, "username": "sara", "role": "user"},
	})
	b.Set(http.MethodPost, "/api/admin/login", http.StatusOK, map[string]any{
		"success": true, "data": map[string]any{"token": "admin-token"}, "user": map[string]any{"id": 1, "username": "root", "role": "admin"},
	})

	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Set replaces the reply for method and path.
func (b *Backend) Set(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[method+" "+path] = Response{Status: status, Body: body}
}

// Fail makes method and path answer with status and an error message.
func (b *Backend) Fail(method, path string, status int) {
	b.Set(method, path, status, map[string]any{"success": false, "message": http.StatusText(status)})
}

// Requests returns the recorded calls matching method and path.
func (b *Backend) Requests(method, path string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Request
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp, ok := b.responses[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		resp = Response{Status: http.StatusNotFound, Body: map[string]any{"success": false, "message": "not found"}}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_ = json.NewEncoder(w).Encode(resp.Body)
}
