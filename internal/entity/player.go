package entity

const (
	RoleNone   Role = ""
	RoleFirst  Role = "first"
	RoleSecond Role = "second"
)

// Roles lists the match seats in assignment order.
var Roles = [2]Role{RoleFirst, RoleSecond}

type Role string

func (that Role) IsValid() bool {
	return that == RoleFirst || that == RoleSecond
}

func (that Role) Opponent() Role {
	switch that {
	case RoleFirst:
		return RoleSecond
	case RoleSecond:
		return RoleFirst
	default:
		return RoleNone
	}
}

// Player is a connected session.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role Role   `json:"role,omitempty"`
}

func (that *Player) HasRole() bool {
	return that.Role != RoleNone
}

// DisplayName falls back to the role when the player never set a name.
func (that *Player) DisplayName() string {
	if that.Name != "" {
		return that.Name
	}
	return string(that.Role)
}
