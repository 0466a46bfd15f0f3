package session

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// Registry tracks connected players and the two match seats. It is not safe for concurrent use;
// the owning room serialises access.
type Registry struct {
	players map[string]*entity.Player
	order   []string
	holders map[entity.Role]string
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*entity.Player),
		holders: make(map[entity.Role]string, len(entity.Roles)),
	}
}

// Register adds a session. It fails with ErrRoomFull while both seats are held by a running match.
func (that *Registry) Register(id string, matchOver bool) (entity.Role, error) {
	if player, ok := that.players[id]; ok {
		return player.Role, nil
	}

	if that.RoleCount() == len(entity.Roles) && !matchOver {
		return entity.RoleNone, apperror.ErrRoomFull
	}

	that.players[id] = &entity.Player{ID: id}
	that.order = append(that.order, id)

	return entity.RoleNone, nil
}

// SetName records the display name and assigns the first free seat if the player has none.
func (that *Registry) SetName(id, name string) (entity.Role, bool, error) {
	player, ok := that.players[id]
	if !ok {
		return entity.RoleNone, false, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	player.Name = name

	if player.HasRole() {
		return player.Role, false, nil
	}

	for _, role := range entity.Roles {
		if _, taken := that.holders[role]; taken {
			continue
		}

		that.holders[role] = id
		player.Role = role

		return role, true, nil
	}

	return entity.RoleNone, false, nil
}

// Release removes the session and frees its seat.
func (that *Registry) Release(id string) (entity.Player, bool) {
	player, ok := that.players[id]
	if !ok {
		return entity.Player{}, false
	}

	if player.HasRole() && that.holders[player.Role] == id {
		delete(that.holders, player.Role)
	}

	delete(that.players, id)
	that.order = slices.DeleteFunc(that.order, func(existing string) bool {
		return existing == id
	})

	return *player, true
}

// ReleaseRoles frees both seats. Sessions stay registered and take a seat again with SetName.
func (that *Registry) ReleaseRoles() {
	for _, player := range that.players {
		player.Role = entity.RoleNone
	}
	clear(that.holders)
}

func (that *Registry) Get(id string) (entity.Player, bool) {
	player, ok := that.players[id]
	if !ok {
		return entity.Player{}, false
	}
	return *player, true
}

func (that *Registry) HolderOf(role entity.Role) (entity.Player, bool) {
	id, ok := that.holders[role]
	if !ok {
		return entity.Player{}, false
	}
	return that.Get(id)
}

func (that *Registry) Count() int {
	return len(that.players)
}

func (that *Registry) RoleCount() int {
	return len(that.holders)
}

// Players returns the sessions in join order.
func (that *Registry) Players() []entity.Player {
	players := make([]entity.Player, 0, len(that.order))
	for _, id := range that.order {
		players = append(players, *that.players[id])
	}
	return players
}
