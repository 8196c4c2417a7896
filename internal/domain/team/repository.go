package team

import "context"

// Repository exposes team reads for the engine.
type Repository interface {
	GetByID(ctx context.Context, leagueID, teamID string) (Team, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
}
