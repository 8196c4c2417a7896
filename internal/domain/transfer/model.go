package transfer

import "time"

// Direction tags an audit entry as a player entering or leaving the eleven.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Entry is one side of a swap recorded when an explicit lineup save changes
// the player set relative to the previous resolved lineup. Entries are the
// source of truth for the transfer budget; counts are projections.
type Entry struct {
	ID               string
	LeagueID         string
	TeamID           string
	MatchID          string
	Direction        Direction
	PlayerID         string
	PreviousPlayerID string
	RecordedAt       time.Time
}

// Used returns the cumulative transfer count: one per IN entry.
func Used(entries []Entry) int {
	used := 0
	for _, entry := range entries {
		if entry.Direction == DirectionIn {
			used++
		}
	}
	return used
}
