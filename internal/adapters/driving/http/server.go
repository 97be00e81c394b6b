// Package http exposes the reconciliation triggers over HTTP with gin.
//
// The two trigger routes run a reconciliation to completion and answer
// with {"success": true}, or with a 500 carrying the error and a
// "Loader error from <route>" message. A trigger while a run is active
// is answered with 409.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Server is the HTTP trigger surface.
type Server struct {
	reconciler driving.Reconciler
	history    driving.RunHistory
	metrics    http.Handler
	router     *gin.Engine

	// runCtx parents trigger runs, so a client disconnect does not abort
	// a run half way through the feed.
	runCtx context.Context
}

// Option configures a Server.
type Option func(*Server)

// WithHistory exposes run history under /api/runs.
func WithHistory(h driving.RunHistory) Option {
	return func(s *Server) { s.history = h }
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer creates the server and registers its routes.
func NewServer(reconciler driving.Reconciler, opts ...Option) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		reconciler: reconciler,
		router:     router,
		runCtx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := router.Group("/api")
	{
		for _, t := range triggers {
			h := s.handleTrigger(t)
			for _, path := range t.paths {
				api.GET(path, h)
				api.POST(path, h)
			}
		}
		api.GET("/status", s.handleStatus)
		if s.history != nil {
			api.GET("/runs", s.handleRuns)
			api.GET("/runs/:id", s.handleRun)
		}
	}

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Runs in flight are cancelled with ctx.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.runCtx = ctx

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// requestLogger logs each request through the application logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logger.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Round(time.Millisecond).String(),
		}).Debug("http request")
	}
}
