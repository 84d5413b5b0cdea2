package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topichat/internal/domain"
	"topichat/internal/pubsub"
	"topichat/internal/repository"
)

// failingConn satisfies domain.Conn and rejects every send, simulating a
// peer that is already gone.
type failingConn struct{}

func (failingConn) Send(v any) error { return errors.New("connection closed") }

// mockPublisher implements pubsub.Publisher for tests.
type mockPublisher struct {
	mu     sync.Mutex
	events []pubsub.Event
}

func (m *mockPublisher) Publish(ctx context.Context, evt pubsub.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, evt := range m.events {
		out[i] = evt.Topic
	}
	return out
}

func newTestService() (*Service, *repository.InMemoryChatRepository, *mockPublisher) {
	repo := repository.New()
	publisher := &mockPublisher{}
	return NewService(NewUseCases(repo), repo, publisher), repo, publisher
}

func TestProcessConnectionRejectsMissingUsername(t *testing.T) {
	svc, repo, _ := newTestService()
	conn := &recordingConn{}

	_, _, err := svc.ProcessConnection(conn, JoinRequest{Topic: "sports"})

	assert.ErrorIs(t, err, domain.ErrUsernameRequired)
	require.Len(t, conn.payloads, 1)
	assert.Equal(t, domain.ErrorPayload{Error: "username is required"}, conn.payloads[0])
	assert.Nil(t, repo.GetTopic("sports"), "rejected join must not create the topic")
}

func TestProcessConnectionRejectsMissingTopic(t *testing.T) {
	svc, _, _ := newTestService()
	conn := &recordingConn{}

	_, _, err := svc.ProcessConnection(conn, JoinRequest{Username: "alice"})

	assert.ErrorIs(t, err, domain.ErrTopicRequired)
	require.Len(t, conn.payloads, 1)
	assert.Equal(t, domain.ErrorPayload{Error: "topic is required"}, conn.payloads[0])
}

func TestProcessConnectionAssignsArbitratedName(t *testing.T) {
	svc, repo, publisher := newTestService()

	first, topic, err := svc.ProcessConnection(&recordingConn{}, JoinRequest{Username: "alice", Topic: "sports"})
	require.NoError(t, err)
	assert.Equal(t, "alice", first)
	assert.Equal(t, "sports", topic)

	second, _, err := svc.ProcessConnection(&recordingConn{}, JoinRequest{Username: "alice", Topic: "sports"})
	require.NoError(t, err)
	assert.Equal(t, "alice#2", second)

	assert.Equal(t, 2, repo.GetTopic("sports").UserCount())
	assert.Equal(t, []string{pubsub.TopicUserJoined, pubsub.TopicUserJoined}, publisher.topics())
}

func TestProcessMessageAcksSenderAndBroadcastsToOthers(t *testing.T) {
	svc, _, publisher := newTestService()

	alice := &recordingConn{}
	bob := &recordingConn{}
	svc.ProcessConnection(alice, JoinRequest{Username: "alice", Topic: "sports"})
	svc.ProcessConnection(bob, JoinRequest{Username: "bob", Topic: "sports"})

	svc.ProcessMessage("sports", "alice", "hello", alice)

	require.Len(t, alice.payloads, 1, "sender receives only the acknowledgment")
	ack, ok := alice.payloads[0].(domain.AckPayload)
	require.True(t, ok)
	assert.Equal(t, "acknowledgment", ack.Type)
	assert.NotEmpty(t, ack.MessageID)

	require.Len(t, bob.payloads, 1)
	broadcast, ok := bob.payloads[0].(domain.BroadcastPayload)
	require.True(t, ok)
	assert.Equal(t, "alice", broadcast.Username)
	assert.Equal(t, "hello", broadcast.Message)
	assert.Equal(t, "sports", broadcast.Topic)

	assert.Contains(t, publisher.topics(), pubsub.TopicMessageSent)
}

func TestProcessMessageListGoesToSenderOnly(t *testing.T) {
	svc, repo, _ := newTestService()

	alice := &recordingConn{}
	bob := &recordingConn{}
	svc.ProcessConnection(alice, JoinRequest{Username: "alice", Topic: "sports"})
	svc.ProcessConnection(bob, JoinRequest{Username: "bob", Topic: "sports"})

	svc.ProcessMessage("sports", "alice", "  /list  ", alice)

	require.Len(t, alice.payloads, 1)
	list, ok := alice.payloads[0].(domain.TopicListPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"sports (2 users)"}, list.Topics)

	assert.Empty(t, bob.payloads, "list responses are never broadcast")
	assert.Empty(t, repo.GetTopic("sports").Messages, "the command is never stored")
}

func TestBroadcastSurvivesFailedRecipient(t *testing.T) {
	svc, _, _ := newTestService()

	alice := &recordingConn{}
	carol := &recordingConn{}
	svc.ProcessConnection(alice, JoinRequest{Username: "alice", Topic: "sports"})
	svc.ProcessConnection(failingConn{}, JoinRequest{Username: "bob", Topic: "sports"})
	svc.ProcessConnection(carol, JoinRequest{Username: "carol", Topic: "sports"})

	svc.ProcessMessage("sports", "alice", "hello", alice)

	require.Len(t, alice.payloads, 1) // the ack, despite bob's dead connection
	require.Len(t, carol.payloads, 1)
	assert.IsType(t, domain.BroadcastPayload{}, carol.payloads[0])
}

func TestHandleDisconnectionRemovesUserAndEmptyTopic(t *testing.T) {
	svc, repo, publisher := newTestService()

	svc.ProcessConnection(&recordingConn{}, JoinRequest{Username: "alice", Topic: "sports"})
	svc.HandleDisconnection("sports", "alice")

	assert.Nil(t, repo.GetTopic("sports"))
	assert.Contains(t, publisher.topics(), pubsub.TopicUserLeft)
}
