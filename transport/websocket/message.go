package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

const (
	actionJoin            = "join"
	actionSetName         = "set_name"
	actionFinishedPlacing = "finished_placing"
	actionAttack          = "attack"
	actionResetGame       = "reset_game"
	actionRandomPlacement = "random_placement"
	actionSync            = "sync"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type setNamePayload struct {
	Name string `json:"name"`
}

type placementPayload struct {
	Role  entity.Role            `json:"role" validate:"required,oneof=first second"`
	Ships []entity.ShipPositions `json:"ships" validate:"required,dive"`
}

type attackPayload struct {
	Attacker    entity.Role  `json:"attacker" validate:"required,oneof=first second"`
	Coordinates *entity.Cell `json:"coordinates" validate:"required"`
}

type attackResultPayload struct {
	Attacker      entity.Role  `json:"attacker"`
	Target        entity.Role  `json:"target"`
	Coordinates   *entity.Cell `json:"coordinates"`
	Hit           bool         `json:"hit"`
	ShipName      string       `json:"shipName,omitempty"`
	ShipDestroyed string       `json:"shipDestroyed,omitempty"`
}

type gameOverPayload struct {
	Winner string `json:"winner"`
}

type suggestedFleetPayload struct {
	Ships []entity.ShipPositions `json:"ships"`
}

// encodeEvent renders an event as the message clients expect for its type.
func encodeEvent(event entity.Event) ([]byte, error) {
	var payload any

	switch event.Type {
	case entity.EventPlayerCount:
		payload = event.Count
	case entity.EventAssignedRole, entity.EventOpponentReady, entity.EventTurnUpdate, entity.EventPlayerDisconnected:
		payload = event.Role
	case entity.EventPhaseUpdate:
		payload = event.Phase
	case entity.EventAttackResult:
		payload = attackResultPayload{
			Attacker:      event.Role,
			Target:        event.Target,
			Coordinates:   event.Cell,
			Hit:           event.Hit,
			ShipName:      event.ShipName,
			ShipDestroyed: event.ShipDestroyed,
		}
	case entity.EventGameOver:
		payload = gameOverPayload{Winner: event.Winner}
	case entity.EventGameError:
		payload = event.Message
	case entity.EventGameReset:
		payload = nil
	case entity.EventSuggestedFleet:
		payload = suggestedFleetPayload{Ships: event.Ships}
	case entity.EventGameState:
		payload = event.Snapshot
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}

	return encodeMessage(string(event.Type), payload)
}

func encodeMessage(action string, payload any) ([]byte, error) {
	message := Message{Action: action}

	if payload != nil {
		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		message.Payload = payloadJSON
	}

	messageJSON, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return messageJSON, nil
}
