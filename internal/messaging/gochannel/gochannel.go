// Package gochannel runs the event bus inside the process on top of
// watermill's Go channel pub/sub. It is used when no Kafka brokers are
// configured.
package gochannel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	wmchannel "github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
)

const keyMetadata = "key"

// Broker publishes and consumes events through in-memory channels.
type Broker struct {
	pubSub *wmchannel.GoChannel
}

// NewBroker creates an in-process broker. Messages published before any
// subscriber exists are dropped.
func NewBroker(logger *slog.Logger) *Broker {
	pubSub := wmchannel.NewGoChannel(
		wmchannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &Broker{pubSub: pubSub}
}

func (b *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(messaging.EventTypeHeader, messaging.EventType(event))
	msg.Metadata.Set(keyMetadata, key)
	msg.SetContext(ctx)

	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Consume delivers every message on topic to handler. Consumer groups do not
// exist in process, so groupID only labels the logs.
func (b *Broker) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Consumer shutting down", "topic", topic, "group", groupID)
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			err := handler(ctx, messaging.Message{
				Topic:   topic,
				Key:     msg.Metadata.Get(keyMetadata),
				Type:    msg.Metadata.Get(messaging.EventTypeHeader),
				Payload: msg.Payload,
			})
			if err != nil {
				slog.Error("Error handling message", "topic", topic, "group", groupID, "err", err)
			}
			msg.Ack()
		}
	}
}

// Close stops every subscription.
func (b *Broker) Close() error {
	return b.pubSub.Close()
}
