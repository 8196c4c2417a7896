package scoring

import "time"

// Record is one team's fantasy score for one match. Upserts are keyed by
// (team, match): recomputation overwrites, never accumulates.
type Record struct {
	LeagueID          string
	TeamID            string
	MatchID           string
	TotalPoints       int
	CaptainPoints     int
	ViceCaptainPoints int
	RegularPoints     int
	UpdatedAt         time.Time
}
