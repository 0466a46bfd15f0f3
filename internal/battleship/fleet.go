package battleship

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

const (
	maxShipAttempts  = 100
	maxFleetAttempts = 20
)

var ErrFleetGeneration = errors.New("could not generate fleet")

// FleetFromPositions rebuilds a submitted fleet and validates it against the catalog and placement rules.
func FleetFromPositions(ships []entity.ShipPositions) (entity.Fleet, error) {
	var board Board
	fleet := entity.Fleet{}

	for _, ship := range ships {
		kind, err := entity.KindByName(ship.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w %q", apperror.ErrInvalidPlacement, err, ship.Name)
		}

		if _, ok := fleet[kind.Name]; ok {
			return nil, fmt.Errorf("%w: ship %s placed twice", apperror.ErrInvalidPlacement, kind.Name)
		}

		origin, orientation, err := lineOf(ship.Positions, kind.Length)
		if err != nil {
			return nil, fmt.Errorf("%w: ship %s: %w", apperror.ErrInvalidPlacement, kind.Name, err)
		}

		if !CanPlace(board, kind, origin, orientation, "") {
			return nil, fmt.Errorf("%w: ship %s is out of bounds or touches another ship", apperror.ErrInvalidPlacement, kind.Name)
		}

		board, fleet = Place(board, fleet, kind, origin, orientation)
	}

	if !fleet.IsComplete() {
		return nil, fmt.Errorf("%w: expected one of each of %d ships, got %d", apperror.ErrInvalidPlacement, len(entity.Catalog), len(ships))
	}

	return fleet, nil
}

var (
	errWrongLength = errors.New("wrong number of cells")
	errNotLine     = errors.New("cells are not a straight contiguous line")
)

// lineOf finds the origin and orientation of a straight run of cells.
func lineOf(positions []entity.Cell, length int) (entity.Cell, entity.Orientation, error) {
	if len(positions) != length || length == 0 {
		return entity.Cell{}, "", errWrongLength
	}

	cells := make([]entity.Cell, len(positions))
	copy(cells, positions)
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})

	origin := cells[0]
	if length == 1 {
		return origin, entity.Horizontal, nil
	}

	orientation := entity.Horizontal
	if cells[1].Col == origin.Col {
		orientation = entity.Vertical
	}

	for i, cell := range cells {
		expected := entity.Cell{Row: origin.Row, Col: origin.Col + i}
		if orientation == entity.Vertical {
			expected = entity.Cell{Row: origin.Row + i, Col: origin.Col}
		}

		if cell != expected {
			return entity.Cell{}, "", errNotLine
		}
	}

	return origin, orientation, nil
}

// RandomFleet places every catalog ship at a random valid position.
func RandomFleet(rng *rand.Rand) (entity.Fleet, error) {
	for range maxFleetAttempts {
		if fleet, ok := tryRandomFleet(rng); ok {
			return fleet, nil
		}
	}

	return nil, ErrFleetGeneration
}

func tryRandomFleet(rng *rand.Rand) (entity.Fleet, bool) {
	var board Board
	fleet := entity.Fleet{}

	for _, kind := range entity.Catalog {
		placed := false

		for range maxShipAttempts {
			orientation := entity.Horizontal
			if rng.Intn(2) == 0 { //nolint: gosec // it's ok
				orientation = entity.Vertical
			}

			origin := entity.Cell{Row: rng.Intn(entity.BoardSize), Col: rng.Intn(entity.BoardSize)} //nolint: gosec // it's ok

			if CanPlace(board, kind, origin, orientation, "") {
				board, fleet = Place(board, fleet, kind, origin, orientation)
				placed = true
				break
			}
		}

		if !placed {
			return nil, false
		}
	}

	return fleet, true
}
