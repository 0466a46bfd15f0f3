package match

import (
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// Match is the authoritative state of one battleship match. It is not safe for concurrent use.
type Match struct {
	fleets   map[entity.Role]entity.Fleet
	attacked map[entity.Role]map[entity.Cell]bool
	stats    map[entity.Role]*entity.RoleStats
	phase    entity.Phase
	turn     entity.Role
	gameOver bool
	winner   entity.Role
	version  uint64
}

func New() *Match {
	match := &Match{
		fleets:   make(map[entity.Role]entity.Fleet, len(entity.Roles)),
		attacked: make(map[entity.Role]map[entity.Cell]bool, len(entity.Roles)),
		stats:    make(map[entity.Role]*entity.RoleStats, len(entity.Roles)),
		phase:    entity.PhasePlacing,
	}

	for _, role := range entity.Roles {
		match.attacked[role] = make(map[entity.Cell]bool)
		match.stats[role] = &entity.RoleStats{ShipsSunk: []string{}}
	}

	return match
}

// SubmitFleet stores the fleet of role. The match moves to attacking once both fleets are in.
func (that *Match) SubmitFleet(role entity.Role, fleet entity.Fleet) ([]entity.Event, error) {
	if !role.IsValid() {
		return nil, apperror.ErrNoRole
	}

	if that.gameOver {
		return nil, apperror.ErrGameFinished
	}

	if that.phase != entity.PhasePlacing {
		return nil, apperror.ErrPlacingFinished
	}

	if _, ok := that.fleets[role]; ok {
		return nil, fmt.Errorf("%w: role %s", apperror.ErrDuplicateSubmission, role)
	}

	// rebuilt from positions so remaining cells are fresh and the geometry is checked here as well
	validated, err := battleship.FleetFromPositions(fleet.Positions())
	if err != nil {
		return nil, err
	}

	that.fleets[role] = validated
	that.version++

	events := []entity.Event{{Type: entity.EventOpponentReady, Role: role}}

	if len(that.fleets) < len(entity.Roles) {
		return events, nil
	}

	that.phase = entity.PhaseAttacking
	that.turn = entity.RoleFirst

	events = append(events,
		entity.Event{Type: entity.EventPhaseUpdate, Phase: that.phase},
		entity.Event{Type: entity.EventTurnUpdate, Role: that.turn},
	)

	return events, nil
}

// Attack fires at cell on the opponent's fleet. A hit keeps the turn, a miss passes it.
func (that *Match) Attack(attacker entity.Role, cell entity.Cell) ([]entity.Event, error) {
	if err := that.validateAttack(attacker, cell); err != nil {
		return nil, err
	}

	target := attacker.Opponent()
	result := battleship.CheckHit(that.fleets[target], cell)

	that.attacked[attacker][cell] = true
	that.version++

	stats := that.stats[attacker]
	stats.Shots++
	if result.Hit {
		stats.Hits++
		stats.Streak++
	} else {
		stats.Streak = 0
	}

	if result.DestroyedShipName != "" {
		stats.ShipsSunk = append(stats.ShipsSunk, result.DestroyedShipName)
	}

	attackCell := cell
	events := []entity.Event{{
		Type:          entity.EventAttackResult,
		Role:          attacker,
		Target:        target,
		Cell:          &attackCell,
		Hit:           result.Hit,
		ShipName:      result.ShipName,
		ShipDestroyed: result.DestroyedShipName,
	}}

	if battleship.CheckVictory(that.fleets[target]) {
		that.gameOver = true
		that.winner = attacker

		return append(events, entity.Event{Type: entity.EventGameOver, Role: attacker}), nil
	}

	if !result.Hit {
		that.turn = target
	}

	return append(events, entity.Event{Type: entity.EventTurnUpdate, Role: that.turn}), nil
}

func (that *Match) validateAttack(attacker entity.Role, cell entity.Cell) error {
	switch {
	case !attacker.IsValid():
		return apperror.ErrNoRole
	case that.gameOver:
		return apperror.ErrGameFinished
	case that.phase != entity.PhaseAttacking:
		return apperror.ErrGameIsNotStarted
	case attacker != that.turn:
		return apperror.ErrNotYourTurn
	case !cell.InBounds():
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, cell.Row, cell.Col)
	case that.hasAttacked(attacker, cell):
		return fmt.Errorf("%w: row %d col %d", apperror.ErrAlreadyAttacked, cell.Row, cell.Col)
	default:
		return nil
	}
}

// Reset replaces the whole state with a fresh placing match.
func (that *Match) Reset() []entity.Event {
	version := that.version
	*that = *New()
	that.version = version + 1

	return []entity.Event{{Type: entity.EventGameReset}}
}

func (that *Match) Phase() entity.Phase {
	return that.phase
}

func (that *Match) Turn() entity.Role {
	return that.turn
}

func (that *Match) IsOver() bool {
	return that.gameOver
}

func (that *Match) Winner() entity.Role {
	return that.winner
}

func (that *Match) HasSubmitted(role entity.Role) bool {
	_, ok := that.fleets[role]
	return ok
}

func (that *Match) hasAttacked(role entity.Role, cell entity.Cell) bool {
	return that.attacked[role][cell]
}

// Snapshot returns the redacted state without ship positions.
func (that *Match) Snapshot() entity.MatchSnapshot {
	snapshot := entity.MatchSnapshot{
		Version:     that.version,
		Phase:       that.phase,
		CurrentTurn: that.turn,
		GameOver:    that.gameOver,
		Winner:      that.winner,
		Submitted:   make(map[entity.Role]bool, len(entity.Roles)),
		Stats:       make(map[entity.Role]entity.RoleStats, len(entity.Roles)),
	}

	for _, role := range entity.Roles {
		snapshot.Submitted[role] = that.HasSubmitted(role)

		stats := *that.stats[role]
		stats.ShipsSunk = append([]string{}, stats.ShipsSunk...)
		snapshot.Stats[role] = stats
	}

	return snapshot
}
