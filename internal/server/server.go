// Package server exposes graph assembly, the library and recommendations
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/recommend"
	"github.com/matsen/paperref/internal/s2"
)

const (
	// Graph assembly makes several paced upstream calls.
	writeTimeout    = 5 * time.Minute
	readTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Searcher finds papers by keyword. *s2.Client implements it.
type Searcher interface {
	SearchPapers(ctx context.Context, query string, limit int) ([]s2.S2Paper, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	assembler   *graph.Assembler
	library     *library.Store // nil when serving outside a repository
	recommender *recommend.Recommender
	searcher    Searcher
	logger      *slog.Logger
}

// New creates a Server. lib may be nil, in which case the routes that read or
// write the library answer 503. A nil logger discards output.
func New(assembler *graph.Assembler, lib *library.Store, recommender *recommend.Recommender, searcher Searcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		assembler:   assembler,
		library:     lib,
		recommender: recommender,
		searcher:    searcher,
		logger:      logger,
	}
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/graph", s.buildGraph)

	r.Route("/library", func(r chi.Router) {
		r.Get("/papers", s.listLibrary)
		r.Post("/papers", s.saveLibrary)
		r.Post("/papers/add", s.addPaper)
		r.Delete("/papers/{id}", s.removePaper)
		r.Get("/search", s.searchPapers)
	})

	r.Get("/recommended", s.recommendForLibrary)
	r.Post("/recommended", s.recommendForPapers)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
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

	s.logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
