package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"topichat/internal/domain"
	"topichat/internal/middleware"
	"topichat/internal/stats"
)

// InfoHandler serves the read-only informational endpoints. Everything here
// is derived from repository snapshots or stats counters; none of it touches
// live topic state.
type InfoHandler struct {
	repo      domain.ChatRepository
	collector *stats.Collector
	appName   string
}

// NewInfoHandler creates the handler for the informational surface.
func NewInfoHandler(repo domain.ChatRepository, collector *stats.Collector, appName string) *InfoHandler {
	return &InfoHandler{
		repo:      repo,
		collector: collector,
		appName:   appName,
	}
}

// Root reports that the server is up.
func (h *InfoHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": h.appName + " is running",
	})
}

// Health is the liveness probe.
func (h *InfoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Topics reports name, user count and message count per active topic.
func (h *InfoHandler) Topics(c echo.Context) error {
	summaries := h.repo.Summaries()
	middleware.FromContext(c.Request().Context()).Debug("Listing topics", "count", len(summaries))

	return c.JSON(http.StatusOK, map[string]any{
		"topics": summaries,
	})
}

// Stats reports the monotonic lifecycle counters per topic.
func (h *InfoHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"topics": h.collector.Snapshot(),
	})
}

// Client serves the embedded HTML test client.
func (h *InfoHandler) Client(c echo.Context) error {
	return c.HTML(http.StatusOK, clientPage)
}
