package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

const (
	snapshotKey = "match:snapshot"
	eventsKey   = "match:events"
)

type MatchRepository interface {
	SaveSnapshot(ctx context.Context, snapshot entity.MatchSnapshot) error
	AppendEvents(ctx context.Context, records []entity.EventRecord) error
	RecentEvents(ctx context.Context, limit int) ([]entity.EventRecord, error)
}

type dbMatch struct {
	client      *redis.Client
	eventsLimit int
}

// NewMatchRepository keeps at most eventsLimit events in the log.
func NewMatchRepository(client *redis.Client, eventsLimit int) MatchRepository {
	return &dbMatch{
		client:      client,
		eventsLimit: eventsLimit,
	}
}

func (that *dbMatch) SaveSnapshot(ctx context.Context, snapshot entity.MatchSnapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	if err = that.client.Set(ctx, snapshotKey, snapshotJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

// AppendEvents pushes records to the tail of the log and trims it to the newest eventsLimit entries.
func (that *dbMatch) AppendEvents(ctx context.Context, records []entity.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	values := make([]any, 0, len(records))
	for _, record := range records {
		recordJSON, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("could not marshal event: %w", err)
		}
		values = append(values, recordJSON)
	}

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, eventsKey, values...)
		pipe.LTrim(ctx, eventsKey, int64(-that.eventsLimit), -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append events: %w", err)
	}

	return nil
}

// RecentEvents returns up to limit newest records, oldest first.
func (that *dbMatch) RecentEvents(ctx context.Context, limit int) ([]entity.EventRecord, error) {
	if limit <= 0 || limit > that.eventsLimit {
		limit = that.eventsLimit
	}

	response, err := that.client.LRange(ctx, eventsKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	records := make([]entity.EventRecord, 0, len(response))
	for _, raw := range response {
		var record entity.EventRecord
		if err = json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}
