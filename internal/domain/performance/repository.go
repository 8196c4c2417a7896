package performance

import "context"

// Repository stores the per-match performance feed. GetByMatch's second
// return distinguishes "feed not arrived" from an empty match; the scoring
// engine must never turn the former into a zero score.
type Repository interface {
	GetByMatch(ctx context.Context, matchID string) (map[string]Performance, bool, error)
	ReplaceMatch(ctx context.Context, matchID string, items []Performance) error
}
