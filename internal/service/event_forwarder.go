package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
)

const publishTimeout = 5 * time.Second

// ForwardCartEvents publishes every cart change on the cart.events topic,
// keyed by cart ID. Publishing failures are logged and do not affect the
// cart. It returns the function that stops forwarding.
func ForwardCartEvents(cart *CartService, publisher messaging.Publisher) (stop func()) {
	return cart.Subscribe(func(change CartChange) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		key := cart.ID()
		if err := publisher.PublishEvent(ctx, messaging.TopicCartEvents, key, change.Event); err != nil {
			slog.Error("Failed to publish cart event", "event_type", change.Event.EventType(), "cart_id", key, "err", err)
		}
	})
}
