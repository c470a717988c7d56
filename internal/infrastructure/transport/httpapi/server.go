// Package httpapi serves the control surface (spec §6) as JSON over a Unix
// domain socket. This replaces the teacher's generated-protobuf gRPC
// service: the same per-operation request/response shape, without
// hand-rolled codegen standing in for a toolchain that cannot be run here.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/kodflow/daemon/internal/application/controlapi"
)

// ErrServerAlreadyRunning indicates Serve was called on a server that is
// already listening.
var ErrServerAlreadyRunning = errors.New("server already running")

// Server exposes an API over a Unix domain socket using net/http.
type Server struct {
	api *controlapi.API

	httpServer *http.Server
	listener   net.Listener

	mu      sync.Mutex
	running bool
}

// NewServer creates a server bound to the given control API.
//
// Params:
//   - api: the control surface operations to expose.
//
// Returns:
//   - *Server: a server ready to Serve.
func NewServer(api *controlapi.API) *Server {
	s := &Server{api: api}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/start", s.handleStart)
	mux.HandleFunc("/v1/stop", s.handleStop)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/reload", s.handleReload)
	mux.HandleFunc("/v1/daemon_stop", s.handleDaemonStop)
	mux.HandleFunc("/v1/logs", s.handleLogs)
	mux.HandleFunc("/v1/orphans", s.handleOrphans)
	mux.HandleFunc("/v1/cleanup", s.handleCleanup)
	s.httpServer = &http.Server{Handler: mux}
	return s
}

// ServeHTTP lets Server itself be used as an http.Handler (e.g. by
// httptest.NewServer in tests), dispatching to the same mux Serve uses.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// Serve binds to socketPath and serves until the listener closes. Any
// stale socket file from an unclean prior exit is removed first.
//
// Params:
//   - socketPath: the Unix domain socket path to listen on.
//
// Returns:
//   - error: ErrServerAlreadyRunning, a bind error, or http.ErrServerClosed
//     (returned as nil, since that is the expected outcome of Stop).
func (s *Server) Serve(socketPath string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	_ = os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the HTTP server and closes the socket.
//
// Params:
//   - ctx: bounds how long in-flight requests are given to finish.
//
// Returns:
//   - error: any error from the underlying graceful shutdown.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// writeJSON writes v as the response body with the given status code,
// never failing loudly: a marshal error here means a handler built a bad
// response, which is a programmer error, not a client-facing one.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
