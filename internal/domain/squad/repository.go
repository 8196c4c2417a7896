package squad

import "context"

// Repository exposes squad pool reads. Pool creation and the replacement
// flow belong to the directory service.
type Repository interface {
	GetByTeam(ctx context.Context, leagueID, teamID string) (Pool, bool, error)
}
