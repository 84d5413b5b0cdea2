package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// shutdown signal before the process gives up on them.
const shutdownTimeout = 10 * time.Second

// Start launches the eviction loop and the HTTP server, then blocks until
// an interrupt or terminate signal triggers a graceful shutdown.
func (s *Server) Start() {
	go s.UseCases.CleanupExpiredMessages(s.backgroundCtx, s.Cfg.TTL())

	go func() {
		slog.Info("Server starting", "addr", s.Cfg.Addr, "message_ttl", s.Cfg.TTL())
		if err := s.E.Start(s.Cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown()
	s.Shutdown()
}

// Shutdown stops the background loops, closes the event bus and drains the
// HTTP server. The eviction loop only ever removes whole messages, so
// cancelling it mid-cycle cannot corrupt topic state.
func (s *Server) Shutdown() {
	slog.Info("Shutting down")
	s.cancelBackground()

	if err := s.Bus.Close(); err != nil {
		slog.Warn("Failed to close event bus", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.E.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}

// waitForShutdown blocks until an interrupt or terminate signal is received.
func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}
