// Package httpapi exposes upload, query and task-status endpoints over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// DefaultMaxUploadBytes caps the size of an uploaded PDF.
const DefaultMaxUploadBytes = 64 << 20

const shutdownTimeout = 10 * time.Second

// Instrumenter wraps handlers with request metrics.
type Instrumenter interface {
	Instrument(route string, h http.Handler) http.Handler
	Handler() http.Handler
}

// Ports are the services the API drives. Query, Tasks and UploadDir are
// required; Stats and Metrics are optional.
type Ports struct {
	Query     driving.QueryService
	Tasks     driving.TaskService
	Stats     driving.StatsService
	Metrics   Instrumenter
	UploadDir string

	// MaxUploadBytes defaults to DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

// Server serves the HTTP API.
type Server struct {
	ports Ports
	mux   *http.ServeMux
}

// NewServer creates the server and the upload directory.
func NewServer(ports Ports) (*Server, error) {
	if ports.Query == nil {
		return nil, errors.New("query service is required")
	}
	if ports.Tasks == nil {
		return nil, errors.New("task service is required")
	}
	if ports.UploadDir == "" {
		return nil, errors.New("upload directory is required")
	}
	if ports.MaxUploadBytes <= 0 {
		ports.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if err := os.MkdirAll(ports.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	s := &Server{ports: ports, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.handle("POST /api/upload-lei/", "/api/upload-lei/", s.handleUpload)
	s.handle("POST /api/consultar-lei/", "/api/consultar-lei/", s.handleQuery)
	s.handle("GET /api/tasks/{id}", "/api/tasks/{id}", s.handleTask)
	s.handle("GET /api/health", "/api/health", s.handleHealth)
	if s.ports.Stats != nil {
		s.handle("GET /api/stats", "/api/stats", s.handleStats)
	}
	if s.ports.Metrics != nil {
		s.mux.Handle("GET /metrics", s.ports.Metrics.Handler())
	}
}

func (s *Server) handle(pattern, route string, h http.HandlerFunc) {
	var handler http.Handler = h
	if s.ports.Metrics != nil {
		handler = s.ports.Metrics.Instrument(route, handler)
	}
	s.mux.Handle(pattern, handler)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
