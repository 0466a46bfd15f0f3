package battleship

import (
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// Board holds the name of the occupying ship in every cell, or an empty string.
type Board [entity.BoardSize][entity.BoardSize]string

func (that *Board) At(cell entity.Cell) string {
	if !cell.InBounds() {
		return ""
	}
	return that[cell.Row][cell.Col]
}

// ShipCells returns the cells a ship of the given kind would occupy. Cells may fall off the board.
func ShipCells(kind entity.ShipKind, origin entity.Cell, orientation entity.Orientation) []entity.Cell {
	cells := make([]entity.Cell, 0, kind.Length)
	for i := range kind.Length {
		switch orientation {
		case entity.Horizontal:
			cells = append(cells, entity.Cell{Row: origin.Row, Col: origin.Col + i})
		case entity.Vertical:
			cells = append(cells, entity.Cell{Row: origin.Row + i, Col: origin.Col})
		default:
			return nil
		}
	}
	return cells
}

// CanPlace checks bounds, overlap and the no-touching rule. Cells of ignoreShipName count as empty,
// which lets a ship be moved next to its own old position.
func CanPlace(board Board, kind entity.ShipKind, origin entity.Cell, orientation entity.Orientation, ignoreShipName string) bool {
	cells := ShipCells(kind, origin, orientation)
	if len(cells) == 0 {
		return false
	}

	for _, cell := range cells {
		if !cell.InBounds() {
			return false
		}

		for dRow := -1; dRow <= 1; dRow++ {
			for dCol := -1; dCol <= 1; dCol++ {
				neighbor := entity.Cell{Row: cell.Row + dRow, Col: cell.Col + dCol}
				if !neighbor.InBounds() {
					continue
				}

				if occupant := board.At(neighbor); occupant != "" && occupant != ignoreShipName {
					return false
				}
			}
		}
	}

	return true
}

// Place writes the ship on copies of board and fleet. A ship of the same kind already in the fleet is
// removed first. Callers must validate with CanPlace.
func Place(board Board, fleet entity.Fleet, kind entity.ShipKind, origin entity.Cell, orientation entity.Orientation) (Board, entity.Fleet) {
	newFleet := entity.Fleet{}
	if fleet != nil {
		newFleet = fleet.Clone()
	}

	if existing, ok := newFleet[kind.Name]; ok {
		for _, cell := range existing.Positions {
			if board.At(cell) == kind.Name {
				board[cell.Row][cell.Col] = ""
			}
		}
		delete(newFleet, kind.Name)
	}

	cells := ShipCells(kind, origin, orientation)
	for _, cell := range cells {
		if cell.InBounds() {
			board[cell.Row][cell.Col] = kind.Name
		}
	}

	newFleet[kind.Name] = entity.NewPlacedShip(kind, cells, orientation)

	return board, newFleet
}

type HitResult struct {
	Hit               bool
	ShipName          string
	DestroyedShipName string
}

// CheckHit removes cell from the remaining cells of the ship that owns it.
func CheckHit(fleet entity.Fleet, cell entity.Cell) HitResult {
	for name, ship := range fleet {
		if !ship.Remaining[cell] {
			continue
		}

		delete(ship.Remaining, cell)

		result := HitResult{Hit: true, ShipName: name}
		if ship.IsSunk() {
			result.DestroyedShipName = name
		}

		return result
	}

	return HitResult{}
}

// CheckVictory reports whether every ship of the fleet is sunk.
func CheckVictory(fleet entity.Fleet) bool {
	for _, ship := range fleet {
		if !ship.IsSunk() {
			return false
		}
	}
	return true
}
