package entity

import "time"

const (
	EventPlayerCount        EventType = "player_count"
	EventAssignedRole       EventType = "assigned_role"
	EventOpponentReady      EventType = "opponent_ready"
	EventPhaseUpdate        EventType = "game_phase_update"
	EventTurnUpdate         EventType = "turn_update"
	EventAttackResult       EventType = "attack_result"
	EventGameOver           EventType = "game_over"
	EventGameError          EventType = "game_error"
	EventGameReset          EventType = "game_reset"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventSuggestedFleet     EventType = "suggested_fleet"
	EventGameState          EventType = "game_state"
)

type EventType string

// Event is an outbound notification. An empty To means broadcast to every session.
type Event struct {
	Type          EventType       `json:"type"`
	To            string          `json:"to,omitempty"`
	Role          Role            `json:"role,omitempty"`
	Target        Role            `json:"target,omitempty"`
	Cell          *Cell           `json:"coordinates,omitempty"`
	Hit           bool            `json:"hit,omitempty"`
	ShipName      string          `json:"shipName,omitempty"`
	ShipDestroyed string          `json:"shipDestroyed,omitempty"`
	Phase         Phase           `json:"phase,omitempty"`
	Winner        string          `json:"winner,omitempty"`
	Count         int             `json:"count,omitempty"`
	Message       string          `json:"message,omitempty"`
	Ships         []ShipPositions `json:"ships,omitempty"`
	Snapshot      *MatchSnapshot  `json:"snapshot,omitempty"`
}

func (that Event) IsBroadcast() bool {
	return that.To == ""
}

// EventRecord is an event as kept in the recent-event log.
type EventRecord struct {
	At    time.Time `json:"at"`
	Event Event     `json:"event"`
}
