// Package redis stores event streams in Redis lists, one list per stream.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

const keyPrefix = "agrismart:events:"

type eventStore struct {
	client *redis.Client
}

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		Protocol: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewEventStore creates a new EventStore backed by Redis.
func NewEventStore(client *redis.Client) repository.EventStore {
	return &eventStore{client: client}
}

func streamKey(streamID string) string {
	return keyPrefix + streamID
}

func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	now := time.Now()
	values := make([]any, 0, len(events))
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		record, err := json.Marshal(entity.EventStoreRecord{
			ID:         uuid.NewString(),
			StreamID:   streamID,
			StreamType: streamType,
			Version:    expectedVersion + i + 1,
			EventType:  event.EventType(),
			Payload:    payload,
			CreatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}
		values = append(values, record)
	}

	key := streamKey(streamID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.LLen(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to get current stream version: %w", err)
		}
		if int(current) != expectedVersion {
			return fmt.Errorf("%w: expected version %d, got %d", repository.ErrConcurrency, expectedVersion, current)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, values...)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: stream %s changed during append", repository.ErrConcurrency, streamID)
	}
	if err != nil {
		return fmt.Errorf("failed to append events to stream %s: %w", streamID, err)
	}
	return nil
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	raw, err := s.client.LRange(ctx, streamKey(streamID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load events for stream %s: %w", streamID, err)
	}

	events := make([]entity.EventStoreRecord, 0, len(raw))
	for _, item := range raw {
		var record entity.EventStoreRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("failed to decode event record: %w", err)
		}
		events = append(events, record)
	}
	return events, nil
}
