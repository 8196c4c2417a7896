package match

import "context"

// Repository is the read-only match timeline plus the upsert the feed
// importer uses. ListByLeague returns matches in ascending Seq order.
type Repository interface {
	GetByID(ctx context.Context, leagueID, matchID string) (Match, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Match, error)
	Upsert(ctx context.Context, item Match) error
}
