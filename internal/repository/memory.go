package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"topichat/internal/domain"
)

// InMemoryChatRepository owns the entire topic map and everything reachable
// from it. A single mutex serializes every operation, including the
// read-modify-write sequences (username arbitration followed by insertion),
// so no caller ever observes a partially applied mutation.
//
// All operations are bounded, in-memory map work; nothing suspends while the
// lock is held.
type InMemoryChatRepository struct {
	mu     sync.Mutex
	topics map[string]*domain.Topic
}

// New creates an empty repository.
func New() *InMemoryChatRepository {
	return &InMemoryChatRepository{
		topics: make(map[string]*domain.Topic),
	}
}

var _ domain.ChatRepository = (*InMemoryChatRepository)(nil)

// GetTopic returns the topic with the given name, or nil if absent.
func (r *InMemoryChatRepository) GetTopic(name string) *domain.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topics[name]
}

// CreateTopic is idempotent: it returns the existing topic if present,
// otherwise registers and returns an empty one.
func (r *InMemoryChatRepository) CreateTopic(name string) *domain.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createTopicLocked(name)
}

func (r *InMemoryChatRepository) createTopicLocked(name string) *domain.Topic {
	if topic, ok := r.topics[name]; ok {
		return topic
	}
	topic := domain.NewTopic(name)
	r.topics[name] = topic
	return topic
}

// DeleteTopic removes the topic; removing an absent topic is a no-op.
func (r *InMemoryChatRepository) DeleteTopic(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.topics, name)
}

// GetAllTopics returns a point-in-time copy of the topic map so callers can
// iterate (e.g. while broadcasting) without re-entering the lock.
func (r *InMemoryChatRepository) GetAllTopics() map[string]*domain.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]*domain.Topic, len(r.topics))
	for name, topic := range r.topics {
		snapshot[name] = topic
	}
	return snapshot
}

// AddUserToTopic registers the user; no-op if the topic does not exist.
func (r *InMemoryChatRepository) AddUserToTopic(name string, user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if topic, ok := r.topics[name]; ok {
		topic.AddUser(user)
	}
}

// RemoveUserFromTopic drops the user; no-op if topic or user is absent.
func (r *InMemoryChatRepository) RemoveUserFromTopic(name, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if topic, ok := r.topics[name]; ok {
		topic.RemoveUser(username)
	}
}

// AddMessage appends the message; no-op if the topic is absent.
func (r *InMemoryChatRepository) AddMessage(name string, msg *domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if topic, ok := r.topics[name]; ok {
		topic.AddMessage(msg)
	}
}

// UniqueUsername resolves desired to a name not currently in use within the
// topic. The name is not reserved: two callers racing between this call and
// AddUserToTopic can compute the same suffix. RegisterUser performs both
// steps under one lock acquisition and is what the join path uses.
func (r *InMemoryChatRepository) UniqueUsername(topicName, desired string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uniqueUsernameLocked(topicName, desired)
}

func (r *InMemoryChatRepository) uniqueUsernameLocked(topicName, desired string) string {
	topic, ok := r.topics[topicName]
	if !ok {
		return desired
	}
	if _, taken := topic.Users[desired]; !taken {
		return desired
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s#%d", desired, n)
		if _, taken := topic.Users[candidate]; !taken {
			return candidate
		}
	}
}

// RegisterUser arbitrates user.Username, creates the topic if absent and
// inserts the user, all under one lock acquisition. Returns the assigned
// username.
func (r *InMemoryChatRepository) RegisterUser(topicName string, user *domain.User) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	assigned := r.uniqueUsernameLocked(topicName, user.Username)
	topic := r.createTopicLocked(topicName)
	user.Username = assigned
	topic.AddUser(user)
	return assigned
}

// UnregisterUser removes the user and collapses the topic if its last user
// just left. Both steps happen under one lock acquisition so no other
// operation can observe an empty topic.
func (r *InMemoryChatRepository) UnregisterUser(topicName, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic, ok := r.topics[topicName]
	if !ok {
		return
	}
	topic.RemoveUser(username)
	if topic.UserCount() == 0 {
		delete(r.topics, topicName)
	}
}

// TopicMembers returns a snapshot of the topic's users, safe to iterate
// while broadcasting without holding the repository lock.
func (r *InMemoryChatRepository) TopicMembers(name string) []*domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic, ok := r.topics[name]
	if !ok {
		return nil
	}
	members := make([]*domain.User, 0, len(topic.Users))
	for _, user := range topic.Users {
		members = append(members, user)
	}
	return members
}

// Summaries returns a per-topic view of user and message counts, ordered by
// topic name.
func (r *InMemoryChatRepository) Summaries() []domain.TopicSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := lo.Keys(r.topics)
	sort.Strings(names)

	return lo.Map(names, func(name string, _ int) domain.TopicSummary {
		topic := r.topics[name]
		return domain.TopicSummary{
			Name:         topic.Name,
			UserCount:    topic.UserCount(),
			MessageCount: len(topic.Messages),
		}
	})
}

// EvictExpiredMessages sweeps every topic, dropping messages whose age at
// now has reached ttl. Runs entirely under the lock; each cycle is bounded
// by the number of stored messages.
func (r *InMemoryChatRepository) EvictExpiredMessages(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for _, topic := range r.topics {
		before := len(topic.Messages)
		topic.RemoveExpiredMessages(now, ttl)
		evicted += before - len(topic.Messages)
	}
	return evicted
}
