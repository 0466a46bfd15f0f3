package entity

import "errors"

const BoardSize = 10

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

var ErrUnknownShip = errors.New("unknown ship")

// Catalog is the ordered set of ship kinds every fleet consists of.
var Catalog = []ShipKind{
	{Name: "Carrier", Length: 5, Color: "bg-blue-500"},
	{Name: "Battleship", Length: 4, Color: "bg-green-500"},
	{Name: "Cruiser", Length: 3, Color: "bg-yellow-500"},
	{Name: "Submarine", Length: 3, Color: "bg-orange-500"},
	{Name: "Destroyer", Length: 2, Color: "bg-red-500"},
}

type Orientation string

// Cell is a zero-based board coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Cell) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

type ShipKind struct {
	Name   string `json:"name"`
	Length int    `json:"size"`
	Color  string `json:"color"`
}

// KindByName looks up a ship kind in the catalog.
func KindByName(name string) (ShipKind, error) {
	for _, kind := range Catalog {
		if kind.Name == name {
			return kind, nil
		}
	}

	return ShipKind{}, ErrUnknownShip
}

// PlacedShip is a ship on the board. Remaining holds the cells not hit yet.
type PlacedShip struct {
	Kind        ShipKind      `json:"kind"`
	Positions   []Cell        `json:"positions"`
	Orientation Orientation   `json:"orientation"`
	Remaining   map[Cell]bool `json:"-"`
}

func NewPlacedShip(kind ShipKind, positions []Cell, orientation Orientation) *PlacedShip {
	remaining := make(map[Cell]bool, len(positions))
	for _, cell := range positions {
		remaining[cell] = true
	}

	return &PlacedShip{
		Kind:        kind,
		Positions:   positions,
		Orientation: orientation,
		Remaining:   remaining,
	}
}

func (that *PlacedShip) IsSunk() bool {
	return len(that.Remaining) == 0
}

func (that *PlacedShip) Clone() *PlacedShip {
	positions := make([]Cell, len(that.Positions))
	copy(positions, that.Positions)

	remaining := make(map[Cell]bool, len(that.Remaining))
	for cell := range that.Remaining {
		remaining[cell] = true
	}

	return &PlacedShip{
		Kind:        that.Kind,
		Positions:   positions,
		Orientation: that.Orientation,
		Remaining:   remaining,
	}
}

// Fleet maps ship name to the placed ship.
type Fleet map[string]*PlacedShip

func (that Fleet) Clone() Fleet {
	clone := make(Fleet, len(that))
	for name, ship := range that {
		clone[name] = ship.Clone()
	}
	return clone
}

// IsComplete reports whether the fleet has exactly one ship of every catalog kind.
func (that Fleet) IsComplete() bool {
	if len(that) != len(Catalog) {
		return false
	}

	for _, kind := range Catalog {
		if _, ok := that[kind.Name]; !ok {
			return false
		}
	}

	return true
}

// ShipPositions is the wire form of a placed ship.
type ShipPositions struct {
	Name      string `json:"name" validate:"required"`
	Positions []Cell `json:"positions" validate:"required,min=1,dive"`
}

// Positions returns the fleet in catalog order in its wire form.
func (that Fleet) Positions() []ShipPositions {
	ships := make([]ShipPositions, 0, len(that))
	for _, kind := range Catalog {
		ship, ok := that[kind.Name]
		if !ok {
			continue
		}

		positions := make([]Cell, len(ship.Positions))
		copy(positions, ship.Positions)
		ships = append(ships, ShipPositions{Name: ship.Kind.Name, Positions: positions})
	}
	return ships
}
