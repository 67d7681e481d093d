// Package server exposes the chatbot over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcliao/monchatbot/internal/chat"
	"github.com/rcliao/monchatbot/internal/metrics"
)

// Responder answers one chat message.
type Responder interface {
	Respond(ctx context.Context, message string) chat.Reply
}

// Sizer reports the number of memorized entries.
type Sizer interface {
	Len() int
}

// Options configures a Server.
type Options struct {
	Addr            string
	Router          Responder
	Memory          Sizer
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
	ShutdownTimeout time.Duration
}

// Server is the chatbot HTTP server.
type Server struct {
	addr            string
	router          Responder
	memory          Sizer
	metrics         *metrics.Metrics
	logger          *slog.Logger
	shutdownTimeout time.Duration
	engine          *gin.Engine
}

// New builds the gin engine and registers the routes.
func New(opts Options) (*Server, error) {
	if opts.Router == nil {
		return nil, errors.New("server requires a router")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		addr:            opts.Addr,
		router:          opts.Router,
		memory:          opts.Memory,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
		shutdownTimeout: opts.ShutdownTimeout,
	}

	engine := gin.New()
	engine.Use(
		requestID(),
		s.accessLog(),
		s.recovery(),
	)
	engine.POST("/ask", s.handleAsk)
	engine.GET("/health", handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
