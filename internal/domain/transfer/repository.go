package transfer

import "context"

// Repository reads the transfer audit log. Writes happen only through the
// lineup store's atomic save.
type Repository interface {
	ListByTeam(ctx context.Context, leagueID, teamID string) ([]Entry, error)
}
