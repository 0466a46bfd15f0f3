package entity

const (
	PhasePlacing   Phase = "placing"
	PhaseAttacking Phase = "attacking"
)

type Phase string

// RoleStats are per-role counters exposed to clients.
type RoleStats struct {
	Shots     int      `json:"shots"`
	Hits      int      `json:"hits"`
	Streak    int      `json:"streak"`
	ShipsSunk []string `json:"shipsSunk"`
}

// MatchSnapshot is the redacted match view. Ship positions are never included.
type MatchSnapshot struct {
	Version     uint64             `json:"version"`
	Phase       Phase              `json:"phase"`
	CurrentTurn Role               `json:"currentTurn,omitempty"`
	GameOver    bool               `json:"gameOver"`
	Winner      Role               `json:"winner,omitempty"`
	Submitted   map[Role]bool      `json:"submitted"`
	Stats       map[Role]RoleStats `json:"stats"`
	Players     []Player           `json:"players,omitempty"`
}
