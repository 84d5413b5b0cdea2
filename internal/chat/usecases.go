package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"topichat/internal/domain"
)

// CommandList is the reserved command token. A frame whose trimmed content
// equals it is never stored as a message; it is answered with the topic list
// sent to the sender only.
const CommandList = "/list"

// cleanupInterval is the fixed sleep between eviction cycles. The message
// TTL is configurable; the cycle cadence is not.
const cleanupInterval = 5 * time.Second

// UseCases translates connection-level intents into repository operations
// and enforces the cross-entity lifecycle rules the repository alone cannot.
type UseCases struct {
	repo   domain.ChatRepository
	logger *slog.Logger
}

// NewUseCases creates the use-case layer on top of the given repository.
func NewUseCases(repo domain.ChatRepository) *UseCases {
	return &UseCases{
		repo:   repo,
		logger: slog.Default().With("component", "chat"),
	}
}

// HandleUserJoin arbitrates a unique username, creates the topic if absent
// and registers a new user bound to the given connection. The assigned name
// may differ from the requested one; callers must propagate the assigned
// name for every subsequent operation tied to this connection.
func (u *UseCases) HandleUserJoin(topicName, desiredUsername string, conn domain.Conn) (string, *domain.User) {
	user := domain.NewUser(desiredUsername, conn)
	assigned := u.repo.RegisterUser(topicName, user)
	return assigned, user
}

// HandleMessage stores a new message in the topic and returns it. Returns
// nil when the trimmed content equals the list command token; commands are
// never stored.
func (u *UseCases) HandleMessage(topicName, username, content string) *domain.Message {
	if strings.TrimSpace(content) == CommandList {
		return nil
	}

	msg := domain.NewMessage(topicName, username, content)
	u.repo.AddMessage(topicName, msg)
	return msg
}

// HandleListCommand snapshots all active topics and formats each as
// "{name} ({N} users)". The triggering topic is included like any other.
func (u *UseCases) HandleListCommand(topicName string) domain.TopicListPayload {
	lines := lo.Map(u.repo.Summaries(), func(s domain.TopicSummary, _ int) string {
		return fmt.Sprintf("%s (%d users)", s.Name, s.UserCount)
	})

	return domain.TopicListPayload{
		Type:   "topic_list",
		Topics: lines,
	}
}

// HandleUserLeave removes the user from the topic and deletes the topic if
// it is now empty. Removal and the empty check run as one repository
// operation, so the registry never holds an empty topic.
func (u *UseCases) HandleUserLeave(topicName, username string) {
	u.repo.UnregisterUser(topicName, username)
}

// CleanupExpiredMessages runs the eviction loop until the context is
// cancelled. Each cycle sweeps all topics for messages older than ttl, then
// sleeps for the fixed interval. A failed cycle is logged and the loop
// continues.
func (u *UseCases) CleanupExpiredMessages(ctx context.Context, ttl time.Duration) {
	u.logger.Info("Message eviction loop started", "ttl", ttl, "interval", cleanupInterval)

	for {
		u.runEvictionCycle(ttl)

		select {
		case <-ctx.Done():
			u.logger.Info("Message eviction loop stopped")
			return
		case <-time.After(cleanupInterval):
		}
	}
}

// runEvictionCycle performs one sweep, containing any failure so the loop
// survives to the next cycle.
func (u *UseCases) runEvictionCycle(ttl time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			u.logger.Error("Eviction cycle failed", "panic", rec)
		}
	}()

	if evicted := u.repo.EvictExpiredMessages(time.Now(), ttl); evicted > 0 {
		u.logger.Debug("Evicted expired messages", "count", evicted)
	}
}
