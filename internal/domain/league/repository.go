package league

import "context"

// Repository exposes read access to league configuration.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	List(ctx context.Context) ([]League, error)
}
