package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
)

// uniqueViolation is the SQLSTATE Postgres reports when an insert collides
// with a unique index.
const uniqueViolation pq.ErrorCode = "23505"

type eventStore struct {
	db *sql.DB
}

// NewEventStore creates a new EventStore backed by Postgres. Each stream is a
// run of rows in the events table numbered 1..n by version.
func NewEventStore(db *sql.DB) repository.EventStore {
	return &eventStore{db: db}
}

// SaveEvents appends events at expectedVersion+1 onwards in one statement.
// A stale expectedVersion and a lost race on the (stream_id, version) index
// both come back as repository.ErrConcurrency.
func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersion(ctx, tx, streamID)
	if err != nil {
		return err
	}
	if current != expectedVersion {
		return fmt.Errorf("%w: stream %s is at version %d, expected %d", repository.ErrConcurrency, streamID, current, expectedVersion)
	}

	query, args, err := appendQuery(streamID, streamType, expectedVersion, events, time.Now())
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stream %s was appended concurrently", repository.ErrConcurrency, streamID)
		}
		return fmt.Errorf("failed to append %d events to %s: %w", len(events), streamID, err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stream %s was appended concurrently", repository.ErrConcurrency, streamID)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func streamVersion(ctx context.Context, tx *sql.Tx, streamID string) (int, error) {
	var version int
	err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1", streamID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read version of stream %s: %w", streamID, err)
	}
	return version, nil
}

// appendQuery builds a multi-row INSERT for events, numbering them from
// fromVersion+1.
func appendQuery(streamID, streamType string, fromVersion int, events []entity.Event, at time.Time) (string, []any, error) {
	const cols = 7
	var (
		sb   strings.Builder
		args = make([]any, 0, len(events)*cols)
	)
	sb.WriteString("INSERT INTO events (id, stream_id, stream_type, version, event_type, payload, created_at) VALUES ")
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return "", nil, fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * cols
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)
		args = append(args, uuid.New(), streamID, streamType, fromVersion+i+1, event.EventType(), payload, at)
	}
	return sb.String(), args, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// LoadEvents returns the stream's records by ascending version.
func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stream_id, stream_type, version, event_type, payload, created_at
		FROM events WHERE stream_id = $1 ORDER BY version`, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stream %s: %w", streamID, err)
	}
	defer rows.Close()

	var records []entity.EventStoreRecord
	for rows.Next() {
		var rec entity.EventStoreRecord
		if err := rows.Scan(&rec.ID, &rec.StreamID, &rec.StreamType, &rec.Version, &rec.EventType, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", streamID, err)
	}
	return records, nil
}
