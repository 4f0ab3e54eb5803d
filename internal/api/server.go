// Package api serves the query assistant over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/assistant"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/logging"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
)

const shutdownTimeout = 5 * time.Second

// Config holds what the HTTP surface needs.
type Config struct {
	Addr      string
	Executor  *query.Executor
	Assistant *assistant.Service
	// Quote renders identifiers in display SQL. Nil leaves them unquoted.
	Quote  func(string) string
	Logger *zap.Logger
}

type Server struct {
	addr     string
	handlers *Handlers
	logger   *zap.Logger
}

func NewServer(cfg Config) *Server {
	logger := logging.OrNop(cfg.Logger)
	return &Server{
		addr:     cfg.Addr,
		handlers: NewHandlers(cfg.Executor, cfg.Assistant, cfg.Quote, logger),
		logger:   logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		requestID,
		s.accessLog,
	)

	r.Get("/healthz", s.handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handlers.ListTables)
		r.Get("/tables/{table}/columns", s.handlers.ListColumns)
		r.Post("/query", s.handlers.Query)
		r.Post("/validate", s.handlers.Validate)
		r.Post("/translate", s.handlers.Translate)
		r.Post("/ask", s.handlers.Ask)
	})
	return r
}

// Serve listens on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Handled request",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
