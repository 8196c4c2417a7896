package team

import "time"

// Team is one fantasy team registered in a league. CreatedAt is the
// leaderboard tie-breaker: earlier team wins the tie.
type Team struct {
	ID        string
	LeagueID  string
	Name      string
	CreatedAt time.Time
}
