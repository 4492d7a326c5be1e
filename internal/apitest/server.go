// Package apitest provides a fake Hekate API for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/julianstephens/hekate/internal/api"
)

// Token is the bearer token the fake server accepts when auth is required.
const Token = "test-token"

// Request is a recorded call to the fake server.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
	Vars   map[string]string
}

// Decode unmarshals the recorded JSON body.
func (r Request) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decoding %s %s body %q: %v", r.Method, r.Path, r.Body, err)
	}
}

// Server is an httptest server routed with gorilla/mux that records every
// request it receives.
type Server struct {
	*httptest.Server
	Router *mux.Router

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake API; it is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{Router: mux.NewRouter()}
	s.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"message": "route not found"})
	})
	s.Server = httptest.NewServer(s.record(s.Router))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		var match mux.RouteMatch
		vars := map[string]string{}
		if s.Router.Match(r, &match) {
			vars = match.Vars
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
			Vars:   vars,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// Handle registers a handler for method and mux path template.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.Router.HandleFunc(path, h).Methods(method)
}

// JSON registers a handler replying with a fixed status and JSON body.
func (s *Server) JSON(method, path string, status int, body any) {
	s.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Fail registers a handler replying with an error status and message.
func (s *Server) Fail(method, path string, status int, message string) {
	s.JSON(method, path, status, map[string]any{"statusCode": status, "message": message})
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Find returns the recorded requests matching method and path.
func (s *Server) Find(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Client returns an API client pointed at the server using Token.
func (s *Server) Client(t testing.TB) *api.Client {
	t.Helper()
	c, err := api.New(s.URL, api.WithTokenSource(api.StaticToken(Token)))
	if err != nil {
		t.Fatalf("creating API client: %v", err)
	}
	return c
}

// WriteJSON writes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Vars exposes mux route variables to handlers.
func Vars(r *http.Request) map[string]string {
	return mux.Vars(r)
}
