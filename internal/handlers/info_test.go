package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topichat/internal/domain"
	"topichat/internal/pubsub"
	"topichat/internal/repository"
	"topichat/internal/stats"
)

type nopConn struct{}

func (nopConn) Send(v any) error { return nil }

func serve(t *testing.T, handler echo.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestRootAndHealth(t *testing.T) {
	h := NewInfoHandler(repository.New(), stats.NewCollector(), "topichat")

	rec := serve(t, h.Root, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "topichat is running")

	rec = serve(t, h.Health, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestTopicsEndpointReflectsRepository(t *testing.T) {
	repo := repository.New()
	repo.RegisterUser("sports", domain.NewUser("alice", nopConn{}))
	repo.RegisterUser("sports", domain.NewUser("bob", nopConn{}))
	repo.AddMessage("sports", domain.NewMessage("sports", "alice", "hello"))

	h := NewInfoHandler(repo, stats.NewCollector(), "topichat")
	rec := serve(t, h.Topics, "/topics")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Topics []domain.TopicSummary `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Topics, 1)
	assert.Equal(t, domain.TopicSummary{Name: "sports", UserCount: 2, MessageCount: 1}, body.Topics[0])
}

func TestStatsEndpointReflectsCollector(t *testing.T) {
	collector := stats.NewCollector()
	bus := pubsub.NewGoChannelBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, collector.Start(ctx, bus))

	payload, err := json.Marshal(pubsub.UserEvent{Topic: "sports", Username: "alice", At: time.Now()})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, pubsub.Event{Topic: pubsub.TopicUserJoined, Payload: payload}))

	require.Eventually(t, func() bool {
		return collector.Snapshot()["sports"].Joins == 1
	}, time.Second, 10*time.Millisecond)

	h := NewInfoHandler(repository.New(), collector, "topichat")
	rec := serve(t, h.Stats, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"joins":1`)
}

func TestClientPageIsServed(t *testing.T) {
	h := NewInfoHandler(repository.New(), stats.NewCollector(), "topichat")

	rec := serve(t, h.Client, "/client")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "WebSocket"), "client page should open a WebSocket")
}
