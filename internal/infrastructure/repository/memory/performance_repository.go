package memory

import (
	"context"
	"sync"

	"github.com/crickbase/fantasy-cricket/internal/domain/performance"
)

// PerformanceRepository distinguishes a match whose feed never arrived from
// a match with an empty feed; only ReplaceMatch marks a feed as present.
type PerformanceRepository struct {
	mu    sync.RWMutex
	feeds map[string]map[string]performance.Performance
}

func NewPerformanceRepository() *PerformanceRepository {
	return &PerformanceRepository{
		feeds: make(map[string]map[string]performance.Performance),
	}
}

func (r *PerformanceRepository) GetByMatch(_ context.Context, matchID string) (map[string]performance.Performance, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feed, ok := r.feeds[matchID]
	if !ok {
		return nil, false, nil
	}

	out := make(map[string]performance.Performance, len(feed))
	for playerID, p := range feed {
		out[playerID] = p
	}

	return out, true, nil
}

func (r *PerformanceRepository) ReplaceMatch(_ context.Context, matchID string, items []performance.Performance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	feed := make(map[string]performance.Performance, len(items))
	for _, p := range items {
		p.MatchID = matchID
		feed[p.PlayerID] = p
	}
	r.feeds[matchID] = feed

	return nil
}
