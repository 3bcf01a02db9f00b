package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventStoreRecord represents an event stored in an event stream.
type EventStoreRecord struct {
	ID         string    `json:"id"`
	StreamID   string    `json:"stream_id"`
	StreamType string    `json:"stream_type"`
	Version    int       `json:"version"`
	EventType  string    `json:"event_type"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// Event represents a domain event.
type Event interface {
	EventType() string
}

// Aggregate represents a domain aggregate root rebuilt from its stream.
type Aggregate interface {
	GetAggregateID() string
	GetVersion() int
	ApplyEvent(event Event) error
}

// AggregateBase carries the stream identity and the number of applied events.
type AggregateBase struct {
	ID      string
	Version int
}

func (a *AggregateBase) GetAggregateID() string {
	return a.ID
}

func (a *AggregateBase) GetVersion() int {
	return a.Version
}

// DecodeEvent turns a stored record back into its typed event.
func DecodeEvent(rec EventStoreRecord) (Event, error) {
	var (
		e   Event
		err error
	)
	switch rec.EventType {
	case "ItemAddedToCart":
		var v ItemAddedToCart
		err = json.Unmarshal(rec.Payload, &v)
		e = v
	case "CartQuantitySet":
		var v CartQuantitySet
		err = json.Unmarshal(rec.Payload, &v)
		e = v
	case "ItemRemovedFromCart":
		var v ItemRemovedFromCart
		err = json.Unmarshal(rec.Payload, &v)
		e = v
	case "CartCleared":
		var v CartCleared
		err = json.Unmarshal(rec.Payload, &v)
		e = v
	case "OrderPlaced":
		var v OrderPlaced
		err = json.Unmarshal(rec.Payload, &v)
		e = v
	default:
		return nil, fmt.Errorf("unknown event type in stream %s: %s", rec.StreamID, rec.EventType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", rec.EventType, err)
	}
	return e, nil
}
