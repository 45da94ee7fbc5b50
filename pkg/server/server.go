// Package server exposes the FAQ assistant over HTTP: a JSON chat API plus a
// minimal embedded web page.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

//go:embed web/index.html
var webFS embed.FS

// Options configures the HTTP server.
type Options struct {
	Addr          string
	MaxConcurrent int
	Logger        *slog.Logger
}

// Server is the HTTP surface of the assistant.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// New builds a Server around the RAG engine.
func New(engine Asker, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}

	h := NewHandler(engine, opts.Logger)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/chat", concurrencyMiddleware(opts.MaxConcurrent, http.HandlerFunc(h.Chat)))
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /{$}", serveIndex)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(opts.Logger, mux)
	wrapped = loggingMiddleware(opts.Logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           wrapped,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: opts.Logger,
	}
}

// serveIndex serves the embedded chat page.
func serveIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
