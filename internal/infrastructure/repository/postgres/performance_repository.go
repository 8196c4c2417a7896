package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crickbase/fantasy-cricket/internal/domain/performance"
	qb "github.com/crickbase/fantasy-cricket/internal/platform/querybuilder"
)

// PerformanceRepository keeps a marker row per ingested feed so an empty
// delivery is distinguishable from one that never arrived.
type PerformanceRepository struct {
	db *sqlx.DB
}

func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

func (r *PerformanceRepository) GetByMatch(ctx context.Context, matchID string) (map[string]performance.Performance, bool, error) {
	markerQuery, markerArgs, err := qb.Select("*").
		From("match_feeds").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get feed marker query: %w", err)
	}

	var marker matchFeedTableModel
	if err := r.db.GetContext(ctx, &marker, markerQuery, markerArgs...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get feed marker: %w", err)
	}

	query, args, err := qb.Select("*").
		From("player_performances").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build list performances query: %w", err)
	}

	var rows []performanceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, false, fmt.Errorf("list performances: %w", err)
	}

	out := make(map[string]performance.Performance, len(rows))
	for _, row := range rows {
		out[row.PlayerID] = performanceFromRow(row)
	}
	return out, true, nil
}

func (r *PerformanceRepository) ReplaceMatch(ctx context.Context, matchID string, items []performance.Performance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace performances tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM player_performances WHERE match_id = $1`, matchID,
	); err != nil {
		return fmt.Errorf("delete replaced performances: %w", err)
	}

	for _, item := range items {
		row := performanceTableModel{
			MatchID:    matchID,
			PlayerID:   item.PlayerID,
			Runs:       item.Batting.Runs,
			Balls:      item.Batting.Balls,
			Fours:      item.Batting.Fours,
			Sixes:      item.Batting.Sixes,
			StrikeRate: item.Batting.StrikeRate,
			Out:        item.Batting.Out,
			Wickets:    item.Bowling.Wickets,
			Overs:      item.Bowling.Overs,
			Maidens:    item.Bowling.Maidens,
			Economy:    item.Bowling.Economy,
			Catches:    item.Fielding.Catches,
			Stumpings:  item.Fielding.Stumpings,
			RunOuts:    item.Fielding.RunOuts,
		}
		query, args, err := qb.InsertModel("player_performances", row, "")
		if err != nil {
			return fmt.Errorf("build performance insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert performance: %w", err)
		}
	}

	marker := matchFeedTableModel{MatchID: matchID, ReceivedAt: time.Now().UTC()}
	query, args, err := qb.InsertModel("match_feeds", marker, `ON CONFLICT (match_id)
DO UPDATE SET received_at = EXCLUDED.received_at`)
	if err != nil {
		return fmt.Errorf("build feed marker upsert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert feed marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace performances tx: %w", err)
	}
	return nil
}

func performanceFromRow(row performanceTableModel) performance.Performance {
	return performance.Performance{
		PlayerID: row.PlayerID,
		MatchID:  row.MatchID,
		Batting: performance.Batting{
			Runs:       row.Runs,
			Balls:      row.Balls,
			Fours:      row.Fours,
			Sixes:      row.Sixes,
			StrikeRate: row.StrikeRate,
			Out:        row.Out,
		},
		Bowling: performance.Bowling{
			Wickets: row.Wickets,
			Overs:   row.Overs,
			Maidens: row.Maidens,
			Economy: row.Economy,
		},
		Fielding: performance.Fielding{
			Catches:   row.Catches,
			Stumpings: row.Stumpings,
			RunOuts:   row.RunOuts,
		},
	}
}
