package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickbase/fantasy-cricket/internal/domain/scoring"
	qb "github.com/crickbase/fantasy-cricket/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) Upsert(ctx context.Context, record scoring.Record) error {
	row := scoreRecordTableModel{
		LeagueID:          record.LeagueID,
		TeamID:            record.TeamID,
		MatchID:           record.MatchID,
		TotalPoints:       record.TotalPoints,
		CaptainPoints:     record.CaptainPoints,
		ViceCaptainPoints: record.ViceCaptainPoints,
		RegularPoints:     record.RegularPoints,
		UpdatedAt:         record.UpdatedAt,
	}

	query, args, err := qb.InsertModel("score_records", row, `ON CONFLICT (league_id, team_id, match_id)
DO UPDATE SET
    total_points = EXCLUDED.total_points,
    captain_points = EXCLUDED.captain_points,
    vice_captain_points = EXCLUDED.vice_captain_points,
    regular_points = EXCLUDED.regular_points,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build score record upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score record: %w", err)
	}
	return nil
}

func (r *ScoringRepository) GetByTeamAndMatch(ctx context.Context, leagueID, teamID, matchID string) (scoring.Record, bool, error) {
	query, args, err := scoreBaseSelectBuilder().
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
			qb.Eq("match_id", matchID),
		).
		ToSQL()
	if err != nil {
		return scoring.Record{}, false, fmt.Errorf("build get score record query: %w", err)
	}

	var row scoreRecordTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Record{}, false, nil
		}
		return scoring.Record{}, false, fmt.Errorf("get score record: %w", err)
	}

	return scoreFromRow(row), true, nil
}

func (r *ScoringRepository) ListByMatch(ctx context.Context, leagueID, matchID string) ([]scoring.Record, error) {
	query, args, err := scoreBaseSelectBuilder().
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("match_id", matchID),
		).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match scores query: %w", err)
	}

	var rows []scoreRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match scores: %w", err)
	}

	out := make([]scoring.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreFromRow(row))
	}
	return out, nil
}

func (r *ScoringRepository) ListByLeague(ctx context.Context, leagueID string) ([]scoring.Record, error) {
	query, args, err := scoreBaseSelectBuilder().
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("team_id", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league scores query: %w", err)
	}

	var rows []scoreRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league scores: %w", err)
	}

	out := make([]scoring.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreFromRow(row))
	}
	return out, nil
}

func scoreFromRow(row scoreRecordTableModel) scoring.Record {
	return scoring.Record{
		LeagueID:          row.LeagueID,
		TeamID:            row.TeamID,
		MatchID:           row.MatchID,
		TotalPoints:       row.TotalPoints,
		CaptainPoints:     row.CaptainPoints,
		ViceCaptainPoints: row.ViceCaptainPoints,
		RegularPoints:     row.RegularPoints,
		UpdatedAt:         row.UpdatedAt,
	}
}

func scoreBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("score_records")
}
