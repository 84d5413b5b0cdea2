package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conn is the outbound capability a User holds toward its transport
// connection. The core never depends on a concrete transport type; the only
// operation it needs is a best-effort structured send. A failed send doubles
// as close detection for the peer.
type Conn interface {
	Send(v any) error
}

// User binds an identity to one live connection within one topic. The
// username is unique within its topic at any instant and immutable once
// assigned.
type User struct {
	ID       string
	Username string
	Conn     Conn
	JoinedAt time.Time
}

// NewUser creates a User with a fresh ID bound to the given connection.
func NewUser(username string, conn Conn) *User {
	return &User{
		ID:       uuid.NewString(),
		Username: username,
		Conn:     conn,
		JoinedAt: time.Now(),
	}
}

// Message is a single chat utterance. It is never mutated after creation;
// the timestamp is used only for eviction, not for ordering guarantees
// beyond insertion order.
type Message struct {
	ID        string
	Username  string
	Content   string
	Topic     string
	Timestamp time.Time
}

// NewMessage creates a Message stamped with the current time.
func NewMessage(topic, username, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Username:  username,
		Content:   content,
		Topic:     topic,
		Timestamp: time.Now(),
	}
}

// Expired reports whether the message's age at the given instant has reached
// the TTL.
func (m *Message) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(m.Timestamp) >= ttl
}

// Topic is a named room grouping connected users and a time-windowed message
// history. A topic with zero users must not remain in the registry.
type Topic struct {
	Name     string
	Users    map[string]*User
	Messages []*Message
}

// NewTopic creates an empty topic.
func NewTopic(name string) *Topic {
	return &Topic{
		Name:  name,
		Users: make(map[string]*User),
	}
}

// AddUser registers a user under its username.
func (t *Topic) AddUser(user *User) {
	t.Users[user.Username] = user
}

// RemoveUser drops the user with the given username, if present.
func (t *Topic) RemoveUser(username string) {
	delete(t.Users, username)
}

// AddMessage appends a message to the topic's history.
func (t *Topic) AddMessage(msg *Message) {
	t.Messages = append(t.Messages, msg)
}

// RemoveExpiredMessages drops every message whose age at now has reached the
// TTL, preserving the insertion order of the survivors.
func (t *Topic) RemoveExpiredMessages(now time.Time, ttl time.Duration) {
	kept := t.Messages[:0]
	for _, msg := range t.Messages {
		if !msg.Expired(now, ttl) {
			kept = append(kept, msg)
		}
	}
	for i := len(kept); i < len(t.Messages); i++ {
		t.Messages[i] = nil
	}
	t.Messages = kept
}

// UserCount returns the number of currently registered users.
func (t *Topic) UserCount() int {
	return len(t.Users)
}
