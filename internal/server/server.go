package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"topichat/internal/chat"
	"topichat/internal/config"
	"topichat/internal/handlers"
	"topichat/internal/logging"
	"topichat/internal/middleware"
	"topichat/internal/pubsub"
	"topichat/internal/repository"
	"topichat/internal/stats"
	"topichat/internal/websocket"
)

// Server holds the dependencies for the chat server: the echo instance, the
// repository that owns all topic state, the use-case and service layers on
// top of it, and the observational event bus with its stats collector.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	Repo     *repository.InMemoryChatRepository
	Bus      *pubsub.GoChannelBus
	UseCases *chat.UseCases
	Service  *chat.Service

	collector   *stats.Collector
	wsHandler   *websocket.Handler
	infoHandler *handlers.InfoHandler

	// backgroundCtx is cancelled at shutdown to stop the eviction loop and
	// the bus subscription goroutines.
	backgroundCtx    context.Context
	cancelBackground context.CancelFunc
}

// New creates a fully wired Server instance. Construct it once at process
// start; every consumer shares the single repository instance.
func New(cfg *config.Config) *Server {
	logging.New(cfg.LogFormat, cfg.LogLevel)

	repo := repository.New()
	bus := pubsub.NewGoChannelBus()
	useCases := chat.NewUseCases(repo)
	service := chat.NewService(useCases, repo, bus)
	collector := stats.NewCollector()

	ctx, cancel := context.WithCancel(context.Background())
	if err := collector.Start(ctx, bus); err != nil {
		slog.Error("Failed to start stats collector", "error", err)
		cancel()
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	return &Server{
		E:                e,
		Cfg:              cfg,
		Repo:             repo,
		Bus:              bus,
		UseCases:         useCases,
		Service:          service,
		collector:        collector,
		wsHandler:        websocket.NewHandler(service),
		infoHandler:      handlers.NewInfoHandler(repo, collector, cfg.AppName),
		backgroundCtx:    ctx,
		cancelBackground: cancel,
	}
}
