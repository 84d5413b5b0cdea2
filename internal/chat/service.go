package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"topichat/internal/domain"
	"topichat/internal/pubsub"
)

// JoinRequest is the first payload a client must send after connecting.
type JoinRequest struct {
	Username string `json:"username" validate:"required"`
	Topic    string `json:"topic" validate:"required"`
}

// Service is the protocol-facing facade. It converts use-case results into
// payloads on the outbound connection, sequences the acknowledgment and the
// broadcast fan-out, and emits lifecycle events onto the bus.
type Service struct {
	useCases  *UseCases
	repo      domain.ChatRepository
	publisher pubsub.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService creates the chat service. The publisher may be nil, in which
// case lifecycle events are not emitted.
func NewService(useCases *UseCases, repo domain.ChatRepository, publisher pubsub.Publisher) *Service {
	return &Service{
		useCases:  useCases,
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
		logger:    slog.Default().With("component", "chat-service"),
	}
}

// ProcessConnection validates the join request and registers the user. On a
// validation failure the structured error payload is sent to the connection
// before the error is returned; the caller must then close without running
// leave logic, since nothing was joined.
func (s *Service) ProcessConnection(conn domain.Conn, req JoinRequest) (string, string, error) {
	if err := s.validate.Struct(req); err != nil {
		verr := joinValidationError(err)
		if sendErr := conn.Send(domain.ErrorPayload{Error: verr.Error()}); sendErr != nil {
			s.logger.Warn("Failed to report validation error to client", "error", sendErr)
		}
		return "", "", verr
	}

	assigned, _ := s.useCases.HandleUserJoin(req.Topic, req.Username, conn)
	s.logger.Info("User joined topic", "username", assigned, "topic", req.Topic)
	s.publishUserEvent(pubsub.TopicUserJoined, req.Topic, assigned)

	return assigned, req.Topic, nil
}

// ProcessMessage handles one inbound frame from a joined connection. The
// list command is answered to the sender only; anything else is stored,
// acknowledged to the sender and then broadcast to the other topic members.
func (s *Service) ProcessMessage(topicName, username, content string, conn domain.Conn) {
	if strings.TrimSpace(content) == CommandList {
		if err := conn.Send(s.useCases.HandleListCommand(topicName)); err != nil {
			s.logger.Warn("Failed to send topic list", "username", username, "error", err)
		}
		return
	}

	msg := s.useCases.HandleMessage(topicName, username, content)
	if msg == nil {
		return
	}

	// The acknowledgment goes out before the broadcast begins and is
	// independent of its outcome.
	if err := conn.Send(domain.NewAck(msg)); err != nil {
		s.logger.Warn("Failed to send acknowledgment", "username", username, "error", err)
	}

	s.broadcast(msg)
	s.publishMessageEvent(msg)
}

// HandleDisconnection removes the user from its topic. The transport layer
// guarantees this runs exactly once per joined connection.
func (s *Service) HandleDisconnection(topicName, username string) {
	s.useCases.HandleUserLeave(topicName, username)
	s.logger.Info("User left topic", "username", username, "topic", topicName)
	s.publishUserEvent(pubsub.TopicUserLeft, topicName, username)
}

// broadcast fans the message out to every topic member except its author,
// from a repository snapshot. A failed delivery to one recipient is logged
// and never aborts delivery to the rest.
func (s *Service) broadcast(msg *domain.Message) {
	payload := domain.NewBroadcast(msg)

	for _, member := range s.repo.TopicMembers(msg.Topic) {
		if member.Username == msg.Username {
			continue
		}
		if err := member.Conn.Send(payload); err != nil {
			s.logger.Warn("Failed to deliver message",
				"recipient", member.Username, "topic", msg.Topic, "error", err)
		}
	}
}

func (s *Service) publishUserEvent(busTopic, topicName, username string) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(pubsub.UserEvent{Topic: topicName, Username: username, At: time.Now()})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), pubsub.Event{Topic: busTopic, Payload: payload}); err != nil {
		s.logger.Warn("Failed to publish lifecycle event", "bus_topic", busTopic, "error", err)
	}
}

func (s *Service) publishMessageEvent(msg *domain.Message) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(pubsub.MessageEvent{
		Topic:     msg.Topic,
		Username:  msg.Username,
		MessageID: msg.ID,
		At:        msg.Timestamp,
	})
	if err != nil {
		return
	}
	evt := pubsub.Event{Topic: pubsub.TopicMessageSent, Payload: payload}
	if err := s.publisher.Publish(context.Background(), evt); err != nil {
		s.logger.Warn("Failed to publish lifecycle event", "bus_topic", pubsub.TopicMessageSent, "error", err)
	}
}

// joinValidationError maps validator field errors onto the domain's
// sentinel errors so the wire payload matches the documented error strings.
func joinValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "Username":
				return domain.ErrUsernameRequired
			case "Topic":
				return domain.ErrTopicRequired
			}
		}
	}
	return domain.ErrInvalidPayload
}
