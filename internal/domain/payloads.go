package domain

// Outbound payload shapes sent over a connection. Timestamps travel as Unix
// seconds so clients do not need to parse RFC 3339.

// ErrorPayload reports a validation failure or malformed input to the
// initiating connection.
type ErrorPayload struct {
	Error string `json:"error"`
}

// AckPayload is sent to the sender immediately after a message is accepted,
// before the broadcast begins.
type AckPayload struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	Timestamp int64  `json:"timestamp"`
}

// TopicListPayload answers the list command, sent to the sender only.
type TopicListPayload struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics"`
}

// BroadcastPayload is delivered to every topic member except the author.
type BroadcastPayload struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Topic     string `json:"topic"`
}

// NewAck builds the acknowledgment payload for an accepted message.
func NewAck(msg *Message) AckPayload {
	return AckPayload{
		Type:      "acknowledgment",
		MessageID: msg.ID,
		Timestamp: msg.Timestamp.Unix(),
	}
}

// NewBroadcast builds the fan-out payload for a stored message.
func NewBroadcast(msg *Message) BroadcastPayload {
	return BroadcastPayload{
		Username:  msg.Username,
		Message:   msg.Content,
		Timestamp: msg.Timestamp.Unix(),
		Topic:     msg.Topic,
	}
}
