package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/testing/suite"
)

func TestMatchRepository_Snapshot(t *testing.T) {
	t.Run("SaveSnapshot_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 10)

		// Given: a snapshot in the attack phase
		snapshot := entity.MatchSnapshot{
			Version:     7,
			Phase:       entity.PhaseAttacking,
			CurrentTurn: entity.RoleSecond,
			Submitted:   map[entity.Role]bool{entity.RoleFirst: true, entity.RoleSecond: true},
			Stats:       map[entity.Role]entity.RoleStats{entity.RoleFirst: {Shots: 3, Hits: 1, ShipsSunk: []string{}}},
			Players:     []entity.Player{{ID: "a", Name: "Alice", Role: entity.RoleFirst}},
		}

		// When: it is saved and read back
		err := matchRepo.SaveSnapshot(ctx, snapshot)
		require.NoError(t, err)

		// Then: the stored snapshot matches
		assert.Equal(t, snapshot, storedSnapshot(ctx, st))
	})

	t.Run("SaveSnapshot_Overwrites", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 10)

		require.NoError(t, matchRepo.SaveSnapshot(ctx, entity.MatchSnapshot{Version: 1, Phase: entity.PhasePlacing}))
		require.NoError(t, matchRepo.SaveSnapshot(ctx, entity.MatchSnapshot{Version: 2, Phase: entity.PhaseAttacking}))

		got := storedSnapshot(ctx, st)
		assert.Equal(t, uint64(2), got.Version)
		assert.Equal(t, entity.PhaseAttacking, got.Phase)
	})
}

func storedSnapshot(ctx context.Context, st *suite.Suite) entity.MatchSnapshot {
	st.Helper()

	raw, err := st.Storage.Get(ctx, snapshotKey).Bytes()
	require.NoError(st, err)

	var snapshot entity.MatchSnapshot
	require.NoError(st, json.Unmarshal(raw, &snapshot))

	return snapshot
}

func TestMatchRepository_Events(t *testing.T) {
	t.Run("Keeps only the newest entries", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 3)
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		// Given: five events appended in two batches
		var records []entity.EventRecord
		for i := range 5 {
			records = append(records, entity.EventRecord{
				At:    at.Add(time.Duration(i) * time.Second),
				Event: entity.Event{Type: entity.EventPlayerCount, Count: i + 1},
			})
		}
		require.NoError(t, matchRepo.AppendEvents(ctx, records[:2]))
		require.NoError(t, matchRepo.AppendEvents(ctx, records[2:]))

		// When: reading without a limit
		got, err := matchRepo.RecentEvents(ctx, 0)

		// Then: the three newest events come back oldest first
		require.NoError(t, err)
		assert.Equal(t, records[2:], got)
	})

	t.Run("Honours the limit", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 10)
		for i := range 4 {
			err := matchRepo.AppendEvents(ctx, []entity.EventRecord{{
				At:    time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
				Event: entity.Event{Type: entity.EventGameError, To: fmt.Sprintf("p%d", i), Message: "not your turn"},
			}})
			require.NoError(t, err)
		}

		got, err := matchRepo.RecentEvents(ctx, 2)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "p2", got[0].Event.To)
		assert.Equal(t, "p3", got[1].Event.To)
	})

	t.Run("Empty log", func(t *testing.T) {
		ctx, st := suite.New(t)

		got, err := NewMatchRepository(st.Storage, 10).RecentEvents(ctx, 5)

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMirror_WritesThroughToRedis(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage, 10)
	mirror := NewMirror(st.Logger, matchRepo, 8)
	go mirror.Run(ctx)

	// When: a batch is published
	mirror.Publish(entity.MatchSnapshot{Version: 1, Phase: entity.PhasePlacing}, []entity.Event{
		{Type: entity.EventPlayerCount, Count: 1},
	})

	// Then: snapshot and event log eventually appear in redis
	require.Eventually(t, func() bool {
		records, err := mirror.RecentEvents(ctx, 5)
		return err == nil && len(records) == 1
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, uint64(1), storedSnapshot(ctx, st).Version)
}
