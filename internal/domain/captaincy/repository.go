package captaincy

import "context"

// Repository reads the captaincy change log. Writes happen only through the
// lineup store's atomic save.
type Repository interface {
	ListByTeam(ctx context.Context, leagueID, teamID string) ([]Change, error)
}
