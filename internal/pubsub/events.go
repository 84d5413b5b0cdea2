package pubsub

import "time"

// Bus topics for chat lifecycle events.
const (
	TopicUserJoined  = "chat.user.joined"
	TopicUserLeft    = "chat.user.left"
	TopicMessageSent = "chat.message.sent"
)

// UserEvent is the body published on TopicUserJoined and TopicUserLeft.
type UserEvent struct {
	Topic    string    `json:"topic"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

// MessageEvent is the body published on TopicMessageSent.
type MessageEvent struct {
	Topic     string    `json:"topic"`
	Username  string    `json:"username"`
	MessageID string    `json:"message_id"`
	At        time.Time `json:"at"`
}
