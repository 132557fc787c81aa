// Package estest runs an in-process fake Elasticsearch for tests.
package estest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
)

// Request is a request received by the fake server.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// HandlerFunc answers one request. The body has already been read.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, body []byte)

// Server is a fake Elasticsearch node that records every request.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake node answering with h and returns it with a
// client pointed at it. Both are closed when the test ends.
func NewServer(t testing.TB, h HandlerFunc) (*Server, *elasticsearch.Client) {
	t.Helper()

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,
		})
		s.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r, body)
	}))
	t.Cleanup(s.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{s.URL},
		DisableRetry: true,
	})
	if err != nil {
		t.Fatalf("failed to create elasticsearch client: %v", err)
	}
	return s, client
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// JSON writes status and body.
func JSON(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Acknowledged writes the generic {"acknowledged":true} answer.
func Acknowledged(w http.ResponseWriter) {
	JSON(w, http.StatusOK, `{"acknowledged":true}`)
}
