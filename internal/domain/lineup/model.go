package lineup

import (
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/captaincy"
	"github.com/crickbase/fantasy-cricket/internal/domain/transfer"
)

// Origin distinguishes a lineup the team actively chose from one the
// propagation job copied forward at lock time.
type Origin string

const (
	OriginExplicit   Origin = "EXPLICIT"
	OriginPropagated Origin = "PROPAGATED"
)

// Lineup is one team's eleven for one match. At most one row exists per
// (team, match). MatchSeq mirrors the match's fixture-order position so the
// store can answer "latest resolved lineup" without re-reading the timeline.
type Lineup struct {
	LeagueID      string
	TeamID        string
	MatchID       string
	MatchSeq      int
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
	Origin        Origin
	CreatedAt     time.Time
}

// PlayerSet returns the eleven as a set for diffing.
func (l Lineup) PlayerSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l.PlayerIDs))
	for _, id := range l.PlayerIDs {
		set[id] = struct{}{}
	}
	return set
}

// Checkpoint captures the state an explicit save replaced, so the save can
// be undone within the grace window. Previous is nil when the save created
// the (team, match) row. PreviousTransfers and PreviousCaptaincy snapshot the
// match's audit entries before the save, since the save replaces them.
type Checkpoint struct {
	LeagueID          string
	TeamID            string
	MatchID           string
	Previous          *Lineup
	PreviousTransfers []transfer.Entry
	PreviousCaptaincy []captaincy.Change
	SavedAt           time.Time
}

// SaveSet bundles everything one explicit save writes. The store applies it
// atomically: the lineup row, the replaced audit entries for the match, and
// the undo checkpoint all land together or not at all.
type SaveSet struct {
	Lineup           Lineup
	Transfers        []transfer.Entry
	CaptaincyChanges []captaincy.Change
	Checkpoint       Checkpoint
}
