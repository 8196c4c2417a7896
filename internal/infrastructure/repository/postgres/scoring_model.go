package postgres

import "time"

type scoreRecordTableModel struct {
	LeagueID          string    `db:"league_id"`
	TeamID            string    `db:"team_id"`
	MatchID           string    `db:"match_id"`
	TotalPoints       int       `db:"total_points"`
	CaptainPoints     int       `db:"captain_points"`
	ViceCaptainPoints int       `db:"vice_captain_points"`
	RegularPoints     int       `db:"regular_points"`
	UpdatedAt         time.Time `db:"updated_at"`
}
