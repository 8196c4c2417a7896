package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	qb "github.com/crickbase/fantasy-cricket/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, leagueID, matchID string) (match.Match, bool, error) {
	query, args, err := matchBaseSelectBuilder().
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("id", matchID),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListByLeague(ctx context.Context, leagueID string) ([]match.Match, error) {
	query, args, err := matchBaseSelectBuilder().
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	insertModel := matchInsertModel{
		ID:        item.ID,
		LeagueID:  item.LeagueID,
		Seq:       item.Seq,
		StartsAt:  item.StartsAt,
		Completed: item.Completed,
	}

	query, args, err := qb.InsertModel("matches", insertModel, `ON CONFLICT (league_id, id)
DO UPDATE SET
    seq = EXCLUDED.seq,
    starts_at = EXCLUDED.starts_at,
    completed = EXCLUDED.completed`)
	if err != nil {
		return fmt.Errorf("build match upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:        row.ID,
		LeagueID:  row.LeagueID,
		Seq:       row.Seq,
		StartsAt:  row.StartsAt,
		Completed: row.Completed,
	}
}

func matchBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("matches")
}
