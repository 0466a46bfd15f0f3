package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

func TestEncodeEvent(t *testing.T) {
	cell := entity.Cell{Row: 3, Col: 4}

	tests := []struct {
		name  string
		event entity.Event
		want  string
	}{
		{
			name:  "player count",
			event: entity.Event{Type: entity.EventPlayerCount, Count: 2},
			want:  `{"action":"player_count","payload":2}`,
		},
		{
			name:  "assigned role",
			event: entity.Event{Type: entity.EventAssignedRole, To: "a", Role: entity.RoleSecond},
			want:  `{"action":"assigned_role","payload":"second"}`,
		},
		{
			name: "attack result",
			event: entity.Event{
				Type: entity.EventAttackResult, Role: entity.RoleFirst, Target: entity.RoleSecond,
				Cell: &cell, Hit: true, ShipName: "Destroyer", ShipDestroyed: "Destroyer",
			},
			want: `{"action":"attack_result","payload":{"attacker":"first","target":"second","coordinates":{"row":3,"col":4},"hit":true,"shipName":"Destroyer","shipDestroyed":"Destroyer"}}`,
		},
		{
			name:  "game over",
			event: entity.Event{Type: entity.EventGameOver, Role: entity.RoleFirst, Winner: "Alice"},
			want:  `{"action":"game_over","payload":{"winner":"Alice"}}`,
		},
		{
			name:  "game reset has no payload",
			event: entity.Event{Type: entity.EventGameReset},
			want:  `{"action":"game_reset"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeEvent(tt.event)

			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		_, err := encodeEvent(entity.Event{Type: "teleport"})

		require.Error(t, err)
	})
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, apperror.ErrRoomFull.Error(), errorMessage(apperror.ErrRoomFull))
	assert.Equal(t, "something went wrong, please try again", errorMessage(assert.AnError))
}
