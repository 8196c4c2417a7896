package captaincy

import "time"

// Kind separates captain changes from vice-captain changes; the two quotas
// are tracked independently.
type Kind string

const (
	KindCaptain     Kind = "CAPTAIN"
	KindViceCaptain Kind = "VICE_CAPTAIN"
)

// Change records one captaincy switch made by an explicit lineup save.
// First designations (FromPlayerID empty) are free and never recorded.
type Change struct {
	ID           string
	LeagueID     string
	TeamID       string
	MatchID      string
	Kind         Kind
	FromPlayerID string
	ToPlayerID   string
	RecordedAt   time.Time
}

// Used counts quota consumption of one kind.
func Used(changes []Change, kind Kind) int {
	used := 0
	for _, change := range changes {
		if change.Kind == kind {
			used++
		}
	}
	return used
}
