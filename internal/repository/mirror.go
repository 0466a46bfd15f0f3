package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type mirrorBatch struct {
	snapshot entity.MatchSnapshot
	records  []entity.EventRecord
}

// Mirror copies room state to Redis from a single background worker. Publish never blocks:
// when the queue is full the batch is dropped with a warning.
type Mirror struct {
	logger *slog.Logger
	repo   MatchRepository
	queue  chan mirrorBatch
	now    func() time.Time
}

func NewMirror(logger *slog.Logger, repo MatchRepository, buffer int) *Mirror {
	return &Mirror{
		logger: logger.With("component", "mirror"),
		repo:   repo,
		queue:  make(chan mirrorBatch, buffer),
		now:    time.Now,
	}
}

func (that *Mirror) Publish(snapshot entity.MatchSnapshot, events []entity.Event) {
	now := that.now()

	records := make([]entity.EventRecord, 0, len(events))
	for _, event := range events {
		records = append(records, entity.EventRecord{At: now, Event: event})
	}

	select {
	case that.queue <- mirrorBatch{snapshot: snapshot, records: records}:
	default:
		that.logger.Warn("mirror queue is full, dropping batch", "version", snapshot.Version, "events", len(records))
	}
}

// Run writes queued batches until ctx is done.
func (that *Mirror) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	for {
		select {
		case <-ctx.Done():
			log.Info("mirror stopped", "pending", len(that.queue))
			return
		case batch := <-that.queue:
			if err := that.write(ctx, batch); err != nil {
				log.Error("failed to mirror match state", "version", batch.snapshot.Version, "error", err)
			}
		}
	}
}

func (that *Mirror) write(ctx context.Context, batch mirrorBatch) error {
	if err := that.repo.SaveSnapshot(ctx, batch.snapshot); err != nil {
		return fmt.Errorf("failed save snapshot: %w", err)
	}

	if err := that.repo.AppendEvents(ctx, batch.records); err != nil {
		return fmt.Errorf("failed append events: %w", err)
	}

	return nil
}

func (that *Mirror) RecentEvents(ctx context.Context, limit int) ([]entity.EventRecord, error) {
	records, err := that.repo.RecentEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed get recent events: %w", err)
	}

	return records, nil
}
