package match

import "time"

// Match is one fixture in a league's timeline. Seq is the fixture-order
// position; every "earlier than" comparison in the engine goes through it.
type Match struct {
	ID        string
	LeagueID  string
	Seq       int
	StartsAt  time.Time
	Completed bool
}

// LockedAt reports whether the match deadline has passed. Lineups for a
// locked match are immutable.
func (m Match) LockedAt(now time.Time) bool {
	return !now.Before(m.StartsAt)
}
