package postgres

import "time"

type squadPlayerTableModel struct {
	LeagueID  string    `db:"league_id"`
	TeamID    string    `db:"team_id"`
	PlayerID  string    `db:"player_id"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}
