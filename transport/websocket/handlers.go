package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

var (
	errBadMessage    = errors.New("malformed message")
	errUnknownAction = errors.New("unknown action")
)

// dispatch runs one request to completion, delivery included, before the next one starts.
func (that *Server) dispatch(ctx context.Context, client *client, raw []byte) {
	log := client.logger.With("method", "dispatch")

	that.dispatchMutex.Lock()
	defer that.dispatchMutex.Unlock()

	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.sendErrorResponse(client, errBadMessage)
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		that.sendErrorResponse(client, fmt.Errorf("%w: %q", errUnknownAction, message.Action))
		return
	}

	events, err := handler(ctx, client, &message)
	if err != nil {
		log.Debug("request rejected", "action", message.Action, "error", err)
		that.sendErrorResponse(client, err)
		return
	}

	that.deliver(events)
}

func (that *Server) handleJoin(ctx context.Context, client *client, _ *Message) ([]entity.Event, error) {
	return that.uGame.Join(ctx, client.id)
}

func (that *Server) handleSetName(ctx context.Context, client *client, msg *Message) ([]entity.Event, error) {
	var payload setNamePayload
	if err := that.decode(msg, &payload); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(payload.Name)
	if err := that.validate.Var(name, fmt.Sprintf("required,max=%d", that.options.MaxNameLength)); err != nil {
		return nil, fmt.Errorf("%w: name must be 1 to %d characters", errBadMessage, that.options.MaxNameLength)
	}

	return that.uGame.SetName(ctx, client.id, name)
}

func (that *Server) handleFinishedPlacing(ctx context.Context, client *client, msg *Message) ([]entity.Event, error) {
	var payload placementPayload
	if err := that.decode(msg, &payload); err != nil {
		return nil, err
	}

	return that.uGame.FinishPlacing(ctx, client.id, payload.Role, payload.Ships)
}

func (that *Server) handleAttack(ctx context.Context, client *client, msg *Message) ([]entity.Event, error) {
	var payload attackPayload
	if err := that.decode(msg, &payload); err != nil {
		return nil, err
	}

	return that.uGame.Attack(ctx, client.id, payload.Attacker, *payload.Coordinates)
}

func (that *Server) handleResetGame(ctx context.Context, client *client, _ *Message) ([]entity.Event, error) {
	return that.uGame.Reset(ctx, client.id)
}

func (that *Server) handleRandomPlacement(ctx context.Context, client *client, _ *Message) ([]entity.Event, error) {
	return that.uGame.RandomPlacement(ctx, client.id)
}

func (that *Server) handleSync(ctx context.Context, client *client, _ *Message) ([]entity.Event, error) {
	return that.uGame.Sync(ctx, client.id), nil
}

// decode unmarshals and validates the payload of msg into dst.
func (that *Server) decode(msg *Message, dst any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", errBadMessage)
	}

	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: %w", errBadMessage, err)
	}

	if err := that.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadMessage, err)
	}

	return nil
}

// deliver sends every event to its recipient, or to every connection when it has none.
// Connections that cannot keep up are dropped.
func (that *Server) deliver(events []entity.Event) {
	log := that.logger.With("method", "deliver")

	var slow []string

	that.connectionsMutex.RLock()
	for _, event := range events {
		message, err := encodeEvent(event)
		if err != nil {
			log.Error("failed to encode event", "type", event.Type, "error", err)
			continue
		}

		if !event.IsBroadcast() {
			if client, ok := that.connections[event.To]; ok && !client.enqueue(message) {
				slow = append(slow, client.id)
			}
			continue
		}

		for _, client := range that.connections {
			if !client.enqueue(message) {
				slow = append(slow, client.id)
			}
		}
	}
	that.connectionsMutex.RUnlock()

	for _, id := range slow {
		log.Warn("dropping slow connection", "playerID", id)
		that.removeClient(id)
	}
}

func (that *Server) sendErrorResponse(client *client, err error) {
	that.deliver([]entity.Event{{Type: entity.EventGameError, To: client.id, Message: errorMessage(err)}})
}

// errorMessage is the text shown to the player. Unexpected errors are not exposed.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomFull),
		errors.Is(err, apperror.ErrInvalidPlacement),
		errors.Is(err, apperror.ErrDuplicateSubmission),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrAlreadyAttacked),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrPlacingFinished),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrNoRole),
		errors.Is(err, apperror.ErrRoleMismatch),
		errors.Is(err, apperror.ErrSessionNotFound),
		errors.Is(err, errBadMessage),
		errors.Is(err, errUnknownAction):
		return err.Error()
	default:
		return "something went wrong, please try again"
	}
}
