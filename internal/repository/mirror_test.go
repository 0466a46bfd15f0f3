package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type mockMatchRepo struct {
	mock.Mock
}

func (that *mockMatchRepo) SaveSnapshot(ctx context.Context, snapshot entity.MatchSnapshot) error {
	return that.Called(ctx, snapshot).Error(0)
}

func (that *mockMatchRepo) AppendEvents(ctx context.Context, records []entity.EventRecord) error {
	return that.Called(ctx, records).Error(0)
}

func (that *mockMatchRepo) RecentEvents(ctx context.Context, limit int) ([]entity.EventRecord, error) {
	args := that.Called(ctx, limit)
	records, _ := args.Get(0).([]entity.EventRecord)
	return records, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestMirror_Publish(t *testing.T) {
	t.Run("Writes snapshot and every committed event in the background", func(t *testing.T) {
		// Given: a running mirror
		repo := &mockMatchRepo{}
		mirror := NewMirror(discardLogger(), repo, 4)
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mirror.now = func() time.Time { return at }

		snapshot := entity.MatchSnapshot{Version: 3, Phase: entity.PhaseAttacking}
		written := make(chan struct{})

		repo.On("SaveSnapshot", mock.Anything, snapshot).Return(nil).Once()
		repo.On("AppendEvents", mock.Anything, []entity.EventRecord{
			{At: at, Event: entity.Event{Type: entity.EventTurnUpdate, Role: entity.RoleFirst}},
			{At: at, Event: entity.Event{Type: entity.EventAssignedRole, To: "a", Role: entity.RoleFirst}},
		}).Return(nil).Once().Run(func(mock.Arguments) { close(written) })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go mirror.Run(ctx)

		// When: publishing a broadcast and a directed event
		mirror.Publish(snapshot, []entity.Event{
			{Type: entity.EventTurnUpdate, Role: entity.RoleFirst},
			{Type: entity.EventAssignedRole, To: "a", Role: entity.RoleFirst},
		})

		// Then: both reach the log in order
		select {
		case <-written:
		case <-time.After(2 * time.Second):
			t.Fatal("mirror did not write the batch")
		}
		repo.AssertExpectations(t)
	})

	t.Run("Drops batches when the queue is full", func(t *testing.T) {
		repo := &mockMatchRepo{}
		mirror := NewMirror(discardLogger(), repo, 1)

		mirror.Publish(entity.MatchSnapshot{Version: 1}, nil)
		mirror.Publish(entity.MatchSnapshot{Version: 2}, nil)

		require.Len(t, mirror.queue, 1)
		batch := <-mirror.queue
		assert.Equal(t, uint64(1), batch.snapshot.Version)
	})
}

func TestMirror_RecentEvents(t *testing.T) {
	repo := &mockMatchRepo{}
	mirror := NewMirror(discardLogger(), repo, 1)
	records := []entity.EventRecord{{Event: entity.Event{Type: entity.EventGameReset}}}
	repo.On("RecentEvents", mock.Anything, 10).Return(records, nil).Once()

	got, err := mirror.RecentEvents(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, records, got)
}
