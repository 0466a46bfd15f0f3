package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/match"
	"github.com/rocketscienceinc/battleship-backend/internal/session"
)

type mirror interface {
	Publish(snapshot entity.MatchSnapshot, events []entity.Event)
	RecentEvents(ctx context.Context, limit int) ([]entity.EventRecord, error)
}

type recorder interface {
	ObserveEvents(events []entity.Event)
	ObserveRejection(action string, err error)
	SetPlayers(count int)
}

// GameManager is the room: one session registry and one match behind a single lock.
// Every operation returns the events to deliver; an event with an empty To goes to every session.
type GameManager struct {
	mu sync.Mutex

	logger   *slog.Logger
	registry *session.Registry
	match    *match.Match
	mirror   mirror
	recorder recorder
	rng      *rand.Rand

	resetOnDisconnect bool
}

func NewGameManager(logger *slog.Logger, mirror mirror, recorder recorder, resetOnDisconnect bool) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		registry: session.NewRegistry(),
		match:    match.New(),
		mirror:   mirror,
		recorder: recorder,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint: gosec // ship layout, not secrets

		resetOnDisconnect: resetOnDisconnect,
	}
}

// Join registers a session and broadcasts the new participant count.
func (that *GameManager) Join(ctx context.Context, id string) ([]entity.Event, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := that.registry.Register(id, that.match.IsOver()); err != nil {
		return nil, that.reject(ctx, "join", id, err)
	}

	that.logger.InfoContext(ctx, "player joined", "playerID", id, "players", that.registry.Count())

	return that.commit([]entity.Event{that.playerCount()}), nil
}

// SetName records the display name and seats the player if a role is free.
func (that *GameManager) SetName(ctx context.Context, id, name string) ([]entity.Event, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	role, assigned, err := that.registry.SetName(id, name)
	if err != nil {
		return nil, that.reject(ctx, "set_name", id, err)
	}

	if !role.IsValid() {
		return nil, that.reject(ctx, "set_name", id, apperror.ErrRoomFull)
	}

	events := []entity.Event{{Type: entity.EventAssignedRole, To: id, Role: role}}
	if assigned {
		that.logger.InfoContext(ctx, "role assigned", "playerID", id, "role", role)
		events = append(events, that.playerCount())
	}

	return that.commit(events), nil
}

// FinishPlacing submits the fleet of the caller. The claimed role must be the caller's own.
func (that *GameManager) FinishPlacing(ctx context.Context, id string, role entity.Role, ships []entity.ShipPositions) ([]entity.Event, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.seatedPlayer(id, role)
	if err != nil {
		return nil, that.reject(ctx, "finished_placing", id, err)
	}

	fleet, err := battleship.FleetFromPositions(ships)
	if err != nil {
		return nil, that.reject(ctx, "finished_placing", id, err)
	}

	events, err := that.match.SubmitFleet(player.Role, fleet)
	if err != nil {
		return nil, that.reject(ctx, "finished_placing", id, err)
	}

	that.logger.InfoContext(ctx, "fleet submitted", "playerID", id, "role", player.Role, "phase", that.match.Phase())

	return that.commit(events), nil
}

// Attack fires at cell on behalf of the caller.
func (that *GameManager) Attack(ctx context.Context, id string, attacker entity.Role, cell entity.Cell) ([]entity.Event, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.seatedPlayer(id, attacker)
	if err != nil {
		return nil, that.reject(ctx, "attack", id, err)
	}

	events, err := that.match.Attack(player.Role, cell)
	if err != nil {
		return nil, that.reject(ctx, "attack", id, err)
	}

	for i := range events {
		if events[i].Type != entity.EventGameOver {
			continue
		}

		events[i].Winner = that.displayName(that.match.Winner())
		that.logger.InfoContext(ctx, "game over", "winner", events[i].Winner, "role", that.match.Winner())
	}

	return that.commit(events), nil
}

// Reset starts a new placing phase and frees both seats. Players take a seat again with SetName.
func (that *GameManager) Reset(ctx context.Context, id string) ([]entity.Event, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.registry.Get(id); !ok {
		return nil, that.reject(ctx, "reset_game", id, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id))
	}

	that.registry.ReleaseRoles()
	events := append(that.match.Reset(), that.playerCount())

	that.logger.InfoContext(ctx, "match reset", "playerID", id)

	return that.commit(events), nil
}

// Leave releases the session and its seat. The match is reset only when resetOnDisconnect is set
// and the leaving session held a seat.
func (that *GameManager) Leave(ctx context.Context, id string) []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.registry.Release(id)
	if !ok {
		return nil
	}

	events := []entity.Event{
		that.playerCount(),
		{Type: entity.EventPlayerDisconnected, Role: player.Role},
	}

	if that.resetOnDisconnect && player.HasRole() {
		that.registry.ReleaseRoles()
		events = append(events, that.match.Reset()...)
	}

	that.logger.InfoContext(ctx, "player left", "playerID", id, "role", player.Role, "players", that.registry.Count())

	return that.commit(events)
}

// RandomPlacement suggests a valid fleet to the caller. The match is not touched.
func (that *GameManager) RandomPlacement(ctx context.Context, id string) ([]entity.Event, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.registry.Get(id); !ok {
		return nil, that.reject(ctx, "random_placement", id, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id))
	}

	fleet, err := battleship.RandomFleet(that.rng)
	if err != nil {
		return nil, that.reject(ctx, "random_placement", id, err)
	}

	return []entity.Event{{Type: entity.EventSuggestedFleet, To: id, Ships: fleet.Positions()}}, nil
}

// Sync sends the current snapshot to the caller.
func (that *GameManager) Sync(_ context.Context, id string) []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := that.snapshot()

	return []entity.Event{{Type: entity.EventGameState, To: id, Snapshot: &snapshot}}
}

func (that *GameManager) Snapshot(_ context.Context) entity.MatchSnapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

// RecentEvents reads the mirrored event log. It does not take the room lock.
func (that *GameManager) RecentEvents(ctx context.Context, limit int) ([]entity.EventRecord, error) {
	records, err := that.mirror.RecentEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent events: %w", err)
	}

	return records, nil
}

func (that *GameManager) seatedPlayer(id string, claimed entity.Role) (entity.Player, error) {
	player, ok := that.registry.Get(id)
	if !ok {
		return entity.Player{}, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if !player.HasRole() {
		return entity.Player{}, apperror.ErrNoRole
	}

	if claimed != player.Role {
		return entity.Player{}, fmt.Errorf("%w: claimed %q, holds %q", apperror.ErrRoleMismatch, claimed, player.Role)
	}

	return player, nil
}

func (that *GameManager) displayName(role entity.Role) string {
	if player, ok := that.registry.HolderOf(role); ok {
		return player.DisplayName()
	}
	return string(role)
}

func (that *GameManager) playerCount() entity.Event {
	return entity.Event{Type: entity.EventPlayerCount, Count: that.registry.Count()}
}

func (that *GameManager) snapshot() entity.MatchSnapshot {
	snapshot := that.match.Snapshot()
	snapshot.Players = that.registry.Players()
	return snapshot
}

// commit feeds metrics and the mirror. Both are non-blocking.
func (that *GameManager) commit(events []entity.Event) []entity.Event {
	that.recorder.ObserveEvents(events)
	that.recorder.SetPlayers(that.registry.Count())
	that.mirror.Publish(that.snapshot(), events)

	return events
}

func (that *GameManager) reject(ctx context.Context, action, id string, err error) error {
	that.recorder.ObserveRejection(action, err)
	that.logger.DebugContext(ctx, "request rejected", "action", action, "playerID", id, "error", err)

	return err
}
