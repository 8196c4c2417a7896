package postgres

import (
	"time"

	"github.com/lib/pq"
)

type lineupTableModel struct {
	LeagueID      string         `db:"league_id"`
	TeamID        string         `db:"team_id"`
	MatchID       string         `db:"match_id"`
	MatchSeq      int            `db:"match_seq"`
	PlayerIDs     pq.StringArray `db:"player_ids"`
	CaptainID     string         `db:"captain_id"`
	ViceCaptainID string         `db:"vice_captain_id"`
	Origin        string         `db:"origin"`
	CreatedAt     time.Time      `db:"created_at"`
}

type transferEntryTableModel struct {
	ID               string    `db:"id"`
	LeagueID         string    `db:"league_id"`
	TeamID           string    `db:"team_id"`
	MatchID          string    `db:"match_id"`
	Direction        string    `db:"direction"`
	PlayerID         string    `db:"player_id"`
	PreviousPlayerID string    `db:"previous_player_id"`
	RecordedAt       time.Time `db:"recorded_at"`
}

type captaincyChangeTableModel struct {
	ID           string    `db:"id"`
	LeagueID     string    `db:"league_id"`
	TeamID       string    `db:"team_id"`
	MatchID      string    `db:"match_id"`
	Kind         string    `db:"kind"`
	FromPlayerID string    `db:"from_player_id"`
	ToPlayerID   string    `db:"to_player_id"`
	RecordedAt   time.Time `db:"recorded_at"`
}

// checkpointTableModel stores the replaced state as JSON blobs; the undo path
// is the only reader and always loads the whole row.
type checkpointTableModel struct {
	LeagueID          string    `db:"league_id"`
	TeamID            string    `db:"team_id"`
	MatchID           string    `db:"match_id"`
	PreviousLineup    []byte    `db:"previous_lineup"`
	PreviousTransfers []byte    `db:"previous_transfers"`
	PreviousCaptaincy []byte    `db:"previous_captaincy"`
	SavedAt           time.Time `db:"saved_at"`
}
