package lineup

import "context"

// Store is the authoritative lineup record. SaveExplicit and Revert are the
// transactional boundary the budget checks rely on; InsertPropagated is a
// conditional insert that never overwrites an existing row.
type Store interface {
	GetByTeamAndMatch(ctx context.Context, leagueID, teamID, matchID string) (Lineup, bool, error)
	// ListByTeam returns the team's lineups in ascending MatchSeq order.
	ListByTeam(ctx context.Context, leagueID, teamID string) ([]Lineup, error)
	ListByMatch(ctx context.Context, leagueID, matchID string) ([]Lineup, error)
	// Current returns the team's latest resolved lineup by MatchSeq.
	Current(ctx context.Context, leagueID, teamID string) (Lineup, bool, error)

	SaveExplicit(ctx context.Context, set SaveSet) error
	// InsertPropagated writes the lineup only if no row exists yet for the
	// (team, match); it reports whether a row was written.
	InsertPropagated(ctx context.Context, item Lineup) (bool, error)

	GetCheckpoint(ctx context.Context, leagueID, teamID string) (Checkpoint, bool, error)
	// Revert undoes the checkpointed save: restores the previous lineup (or
	// removes the row), drops the save's audit entries, and clears the
	// checkpoint, atomically.
	Revert(ctx context.Context, cp Checkpoint) error
}
