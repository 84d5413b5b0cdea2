package domain

import "time"

// ChatRepository is the single source of truth for topic, user and message
// state. Every operation is atomic with respect to the others; no caller
// ever observes a partially applied mutation.
//
// It lives in the domain because it is a requirement OF the domain, not of
// any particular storage implementation. Absence of an entity is expressed
// as a no-op or nil result, never as an error.
type ChatRepository interface {
	// GetTopic returns the topic with the given name, or nil if absent.
	GetTopic(name string) *Topic

	// CreateTopic returns the existing topic if already present, otherwise
	// creates, registers and returns an empty one.
	CreateTopic(name string) *Topic

	// DeleteTopic removes the topic; no error if absent.
	DeleteTopic(name string)

	// GetAllTopics returns a point-in-time copy of the topic map, safe for
	// the caller to iterate without holding the repository's lock.
	GetAllTopics() map[string]*Topic

	// AddUserToTopic registers the user; no-op if the topic does not exist.
	AddUserToTopic(name string, user *User)

	// RemoveUserFromTopic drops the user; no-op if topic or user is absent.
	RemoveUserFromTopic(name, username string)

	// AddMessage appends the message to the topic; no-op if the topic is
	// absent.
	AddMessage(name string, msg *Message)

	// UniqueUsername resolves the desired name to one unique within the
	// topic, probing "name#2", "name#3", ... in order. The name is not
	// reserved; use RegisterUser when the result must survive concurrent
	// joins.
	UniqueUsername(topicName, desired string) string

	// RegisterUser atomically arbitrates user.Username to a unique name
	// within the topic, creates the topic if absent, and inserts the user
	// under the assigned name. Arbitration and insertion happen under one
	// lock acquisition, so two concurrent joins with the same desired name
	// can never both receive it. Returns the assigned username.
	RegisterUser(topicName string, user *User) string

	// UnregisterUser removes the user and deletes the topic if it became
	// empty, under one lock acquisition. An empty topic never survives a
	// completed leave.
	UnregisterUser(topicName, username string)

	// TopicMembers returns a snapshot of the users currently in the topic,
	// safe to iterate while broadcasting. Nil if the topic is absent.
	TopicMembers(name string) []*User

	// Summaries returns a per-topic snapshot of user and message counts,
	// ordered by topic name.
	Summaries() []TopicSummary

	// EvictExpiredMessages drops every stored message whose age at now has
	// reached ttl, across all topics, and reports how many were removed.
	EvictExpiredMessages(now time.Time, ttl time.Duration) int
}

// TopicSummary is a point-in-time view of one topic, for the list command
// and the informational endpoints.
type TopicSummary struct {
	Name         string `json:"name"`
	UserCount    int    `json:"user_count"`
	MessageCount int    `json:"message_count"`
}
