package scoring

import "context"

// Repository persists score records.
type Repository interface {
	Upsert(ctx context.Context, record Record) error
	GetByTeamAndMatch(ctx context.Context, leagueID, teamID, matchID string) (Record, bool, error)
	ListByMatch(ctx context.Context, leagueID, matchID string) ([]Record, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Record, error)
}
