package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// GoChannelBus implements Publisher and Subscriber on top of watermill's
// in-memory GoChannel transport. The whole process shares one bus instance.
type GoChannelBus struct {
	pub message.Publisher
	sub message.Subscriber
}

// NewGoChannelBus initializes the in-process event bus.
func NewGoChannelBus() *GoChannelBus {
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(gochannel.Config{}, logger)

	return &GoChannelBus{
		pub: goChannel,
		sub: goChannel,
	}
}

// Publish implements the Publisher interface.
func (b *GoChannelBus) Publish(ctx context.Context, evt Event) error {
	wmMsg := message.NewMessage(watermill.NewUUID(), evt.Payload)
	for k, v := range evt.Metadata {
		wmMsg.Metadata.Set(k, v)
	}
	return b.pub.Publish(evt.Topic, wmMsg)
}

// Subscribe implements the Subscriber interface. Events are delivered on a
// background goroutine; a handler error is logged and the event nacked, but
// consumption continues.
func (b *GoChannelBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wmMsg := range messages {
			evt := Event{
				Topic:    topic,
				Payload:  wmMsg.Payload,
				Metadata: wmMsg.Metadata,
			}
			if err := handler(ctx, evt); err != nil {
				slog.Error("Failed to handle event", "topic", topic, "event_id", wmMsg.UUID, "error", err)
				wmMsg.Nack()
				continue
			}
			wmMsg.Ack()
		}
		slog.Debug("Subscription loop ended", "topic", topic)
	}()

	return nil
}

// Close shuts down the bus and terminates all subscription loops.
func (b *GoChannelBus) Close() error {
	return b.sub.Close()
}
