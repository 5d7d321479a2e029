// Package server exposes an agent to an external harness over HTTP and
// WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/discardbot/sdk"
)

// Agent is what the server drives: an sdk.Agent that can report its
// running statistics.
type Agent interface {
	sdk.Agent
	Stats() sdk.MatchStats
}

// Server routes harness calls into a single agent. Calls are serialized so
// the agent only ever sees one request at a time.
type Server struct {
	agent    Agent
	logger   *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	// calls serializes Act and Observe across HTTP and WebSocket clients.
	calls sync.Mutex

	mu          sync.Mutex
	connections map[*Connection]struct{}
}

// New creates a server for a.
func New(a Agent, logger *log.Logger) *Server {
	s := &Server{
		agent:  a,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			// harness clients are not browsers
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		connections: make(map[*Connection]struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/get_action", s.handleGetAction)
	r.Post("/observe", s.handleObserve)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/ws", s.handleWebSocket)
	s.router = r
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeConnections()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) act(ctx context.Context, req sdk.Request) sdk.Decision {
	s.calls.Lock()
	defer s.calls.Unlock()
	return s.agent.Act(ctx, req)
}

func (s *Server) observe(ctx context.Context, req sdk.Request) {
	s.calls.Lock()
	defer s.calls.Unlock()
	s.agent.Observe(ctx, req)
}

func (s *Server) register(c *Connection) {
	s.mu.Lock()
	s.connections[c] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	_, ok := s.connections[c]
	delete(s.connections, c)
	total := len(s.connections)
	s.mu.Unlock()
	if ok {
		s.logger.Info("Client disconnected", "total", total)
	}
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}
