package squad

import "time"

// Role is the closed set of player roles, assigned once when the squad
// pool is ingested and consumed as data everywhere else.
type Role string

const (
	RoleKeeper            Role = "KEEPER"
	RoleBatter            Role = "BATTER"
	RoleBattingAllrounder Role = "BATTING_ALLROUNDER"
	RoleBowlingAllrounder Role = "BOWLING_ALLROUNDER"
	RoleBowler            Role = "BOWLER"
)

var AllRoles = map[Role]struct{}{
	RoleKeeper:            {},
	RoleBatter:            {},
	RoleBattingAllrounder: {},
	RoleBowlingAllrounder: {},
	RoleBowler:            {},
}

// Player is one drafted member of a team's squad pool.
type Player struct {
	PlayerID string
	Name     string
	Role     Role
}

// Pool is the fixed player set a team drafts when joining a league.
// The engine never mutates it; every lineup must draw from it.
type Pool struct {
	LeagueID  string
	TeamID    string
	Players   []Player
	CreatedAt time.Time
}

// RoleOf looks up a pool member's role.
func (p Pool) RoleOf(playerID string) (Role, bool) {
	for _, member := range p.Players {
		if member.PlayerID == playerID {
			return member.Role, true
		}
	}
	return "", false
}
